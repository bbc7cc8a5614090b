package entity

import "errors"

var (
	ErrNotAnImage        = errors.New("not an image")
	ErrTimeout           = errors.New("timed out waiting for image")
	ErrRemoteUnavailable = errors.New("remote tagger unavailable")
	ErrMalformedResponse = errors.New("malformed tagger response")
	ErrHistoryDisabled   = errors.New("history is disabled")
	ErrBusy              = errors.New("recognition already in progress")
)
