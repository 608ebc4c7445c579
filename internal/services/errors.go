package services

import "errors"

var (
	// ErrUnauthenticated is returned when the caller has no verified identity
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrInvalidArgument is returned for missing or malformed request fields
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMediaDeleteFailed is returned when the media host did not confirm a delete
	ErrMediaDeleteFailed = errors.New("media deletion failed")
	// ErrAccountDeletionFailed is the only error DeleteAccount surfaces
	ErrAccountDeletionFailed = errors.New("account deletion failed")
)
