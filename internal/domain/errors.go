package domain

import "errors"

var (
	ErrDecode               = errors.New("image decode failed")
	ErrUnsupportedFormat    = errors.New("unsupported image format")
	ErrDuplicateFingerprint = errors.New("fingerprint already certified")
	ErrNotFound             = errors.New("not found")
	ErrPolicyDenied         = errors.New("certification denied by policy")
	ErrInsufficientFunds    = errors.New("wallet has insufficient funds")
	ErrRequestUnknown       = errors.New("certification request unknown")
)
