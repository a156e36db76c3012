package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"gift-store-api/internal/model"
)

// CredentialVerifier checks a username/password pair against the directory.
type CredentialVerifier interface {
	Verify(ctx context.Context, username string, password string) (model.User, error)
}

// PasswordHasher hashes plaintext passwords for storage. Only signup uses it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// BcryptVerifier verifies credentials with bcrypt against stored hashes.
type BcryptVerifier struct {
	users UserDirectory
}

func NewBcryptVerifier(users UserDirectory) *BcryptVerifier {
	return &BcryptVerifier{users: users}
}

func (v *BcryptVerifier) Verify(ctx context.Context, username string, password string) (model.User, error) {
	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, model.ErrBadCredentials
	}
	return user, nil
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
