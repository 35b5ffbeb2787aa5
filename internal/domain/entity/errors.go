package entity

import "errors"

var (
	// ErrUnknownNetwork is returned when a chain ID has no active network definition.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrInvalidAccount is returned for account identifiers that are not hex addresses.
	ErrInvalidAccount = errors.New("invalid account address")
	// ErrReferenceNotConfigured is returned when the chain has no reference token in its token list.
	ErrReferenceNotConfigured = errors.New("reference currency not configured for network")
	// ErrViewClosed is returned by operations on a torn down valuation view.
	ErrViewClosed = errors.New("valuation view closed")
)
