package identity

import (
	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrInvalidCredentials = goerrors.New("The email or password is invalid", goerrors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS")

	ErrEmailInUse = goerrors.New("The email address is already in use by another account", goerrors.CategoryConflict).
			WithTextCode("EMAIL_IN_USE")

	ErrAccountNotFound = goerrors.New("There is no user record corresponding to this identifier", goerrors.CategoryNotFound).
				WithTextCode("ACCOUNT_NOT_FOUND")

	ErrNoSession = goerrors.New("No user is currently signed in", goerrors.CategoryAuth).
			WithTextCode("NO_SESSION")

	ErrInvalidToken = goerrors.New("The action code is invalid", goerrors.CategoryAuth).
			WithTextCode("INVALID_ACTION_CODE")

	ErrTokenExpired = goerrors.New("The action code has expired", goerrors.CategoryAuth).
			WithTextCode("EXPIRED_ACTION_CODE")

	ErrNoEmptyString = goerrors.New("password can't be an empty string", goerrors.CategoryValidation).
				WithTextCode("EMPTY_PASSWORD")

	ErrWeakPassword = goerrors.New("Password should be at least 6 characters", goerrors.CategoryValidation).
			WithTextCode("WEAK_PASSWORD")
)
