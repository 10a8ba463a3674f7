package controller

import "errors"

var (
	// ErrCapabilityUnavailable means the client lacks speech recognition or synthesis.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrNoVoiceAvailable means synthesis was requested before any voice was known.
	ErrNoVoiceAvailable = errors.New("no voice available")
	// ErrClosed is returned by Post after Close.
	ErrClosed = errors.New("controller closed")
)
