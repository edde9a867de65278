package errors

import "errors"

var (
	ErrMissingBotToken       = errors.New("RELAY_TELEGRAM_BOT_TOKEN environment variable is required")
	ErrMissingAppCredentials = errors.New("telegram app id, app hash and phone are required for the monitor")
	ErrUnauthorized          = errors.New("unauthorized user")
	ErrInvalidIdentifier     = errors.New("invalid channel identifier")

	// ErrStorage marks failures of the relational store. Callers must not swallow it.
	ErrStorage = errors.New("storage failure")

	ErrSourceNotFound      = errors.New("source channel not found")
	ErrOwnerNotFound       = errors.New("owner channel not found")
	ErrOwnerExists         = errors.New("owner channel already registered")
	ErrAssociationExists   = errors.New("source is already watched for this owner channel")
	ErrAssociationNotFound = errors.New("source is not watched for this owner channel")
	ErrInvalidTransition   = errors.New("invalid subscription status transition")

	ErrPendingPostExists = errors.New("pending post already registered")
	ErrNothingToPublish  = errors.New("post has neither text nor media to publish")
	ErrNotConnected      = errors.New("channel network session is not connected")
	ErrLoginRequired     = errors.New("session is not authorized, run the login command first")
)
