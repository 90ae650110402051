package domain

import "errors"

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrCorruptCredential  = errors.New("stored credential is corrupt")
	ErrInvalidRole        = errors.New("invalid role")
	ErrValidation         = errors.New("validation failed")

	ErrInvalidToken     = errors.New("invalid token")
	ErrUnauthenticated  = errors.New("could not validate credentials")
	ErrPermissionDenied = errors.New("not authorized")

	ErrProjectNotFound = errors.New("project not found")
)
