package errors

import "github.com/pkg/errors"

var (
	// common errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrConnectionTimeout = errors.New("connection timeout")

	// sync errors
	ErrGoogleNotConnected = errors.New("google account not connected")
	ErrSyncInProgress     = errors.New("sync already in progress for user")
)
