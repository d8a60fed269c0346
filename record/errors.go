package record

import "errors"

// Validation errors
var (
	ErrUnknownType     = errors.New("unknown record type")
	ErrDirectPTR       = errors.New("PTR records cannot be declared directly, use ptr_record on A and AAAA")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidHostname = errors.New("invalid hostname")
	ErrTextTooLong     = errors.New("TXT text exceeds 255 characters")
	ErrInvalidTTL      = errors.New("TTL must be a non-negative integer")
)
