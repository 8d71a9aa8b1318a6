package domain

import "errors"

var (
	ErrPoolEmpty             = errors.New("account pool is empty")
	ErrPoolExhausted         = errors.New("account pool exhausted")
	ErrUnsupportedPoolFormat = errors.New("unsupported account pool format")
	ErrNotAuthenticated      = errors.New("session is not authenticated")
	ErrMissingAccessToken    = errors.New("token response missing access token")
)
