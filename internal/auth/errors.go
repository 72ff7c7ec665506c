package auth

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	ErrEmailExists        = errors.New("email address is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("email address is badly formatted")
	ErrInvalidToken       = errors.New("session token is invalid or expired")
	ErrUserDisabled       = errors.New("account has been disabled")
	ErrTooManyAttempts    = errors.New("too many attempts, try again later")
)

// providerCodes maps Identity Toolkit error messages to portal errors. The
// provider appends detail after the code, e.g. "WEAK_PASSWORD : ...".
var providerCodes = map[string]error{
	"EMAIL_EXISTS":                   ErrEmailExists,
	"EMAIL_NOT_FOUND":                ErrInvalidCredentials,
	"INVALID_PASSWORD":               ErrInvalidCredentials,
	"INVALID_LOGIN_CREDENTIALS":      ErrInvalidCredentials,
	"WEAK_PASSWORD":                  ErrWeakPassword,
	"INVALID_EMAIL":                  ErrInvalidEmail,
	"MISSING_EMAIL":                  ErrInvalidEmail,
	"INVALID_ID_TOKEN":               ErrInvalidToken,
	"TOKEN_EXPIRED":                  ErrInvalidToken,
	"USER_NOT_FOUND":                 ErrInvalidToken,
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": ErrInvalidToken,
	"USER_DISABLED":                  ErrUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER":    ErrTooManyAttempts,
}

// translate turns a provider error into one wrapping a portal sentinel when
// the provider code is known.
func translate(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		code, _, _ := strings.Cut(gerr.Message, " ")
		if sentinel, ok := providerCodes[code]; ok {
			return fmt.Errorf("%s: %w", op, sentinel)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
