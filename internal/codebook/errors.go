package codebook

import "errors"

var (
	// ErrParse is returned for malformed YAML
	ErrParse = errors.New("codebook parse error")

	// ErrInvalid is returned when a codebook fails validation
	ErrInvalid = errors.New("invalid codebook")

	// ErrUnknownQuestion is returned for a question id the codebook does not define
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrUnknownMatrix is returned for a matrix id the codebook does not define
	ErrUnknownMatrix = errors.New("unknown matrix")
)
