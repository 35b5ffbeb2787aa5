package service

import "errors"

// ErrInvalidPickerCommand is returned for malformed picker interactions.
var ErrInvalidPickerCommand = errors.New("invalid picker command")
