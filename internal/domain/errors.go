package domain

import "errors"

var (
	// ErrDuplicateSession is returned when a session id is created twice.
	ErrDuplicateSession = errors.New("session already exists")
	// ErrSessionNotFound is returned when no session matches a lookup.
	ErrSessionNotFound = errors.New("session not found")
	// ErrValidation indicates a request was missing required fields.
	ErrValidation = errors.New("invalid request")
	// ErrInvalidSignature indicates a webhook failed its authenticity check.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMissingConfig indicates a payment-capable code path has no credentials.
	ErrMissingConfig = errors.New("missing provider configuration")
	// ErrUpstream indicates a payment-provider call failed.
	ErrUpstream = errors.New("upstream provider error")
)
