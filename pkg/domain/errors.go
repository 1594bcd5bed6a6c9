package domain

import "errors"

// ErrInvalidProfileURL indicates the given URL is not a reddit user profile.
// Aborts processing of that profile only.
var ErrInvalidProfileURL = errors.New("invalid reddit profile url")
