package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrBadCredentials    = errors.New("bad credentials")

	// Token related errors
	ErrTokenNotFound = errors.New("token not found")
	ErrInvalidAuth   = errors.New("invalid jwt authentication")

	// Catalog related errors
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrTagNotFound         = errors.New("tag not found")
	ErrTagAlreadyExists    = errors.New("tag already exists")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
