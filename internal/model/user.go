package model

import "time"

// User is a principal record owned by the user directory.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the reduced shape handed out over the API.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Public strips the credential fields.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// AuthClaims is the decoded content of an access token attached to a request.
type AuthClaims struct {
	UserID      string   `json:"sub"`
	Username    string   `json:"username"`
	Role        Role     `json:"role"`
	Authorities []string `json:"authorities"`
}
