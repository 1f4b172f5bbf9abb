package services

import "errors"

// Failure kinds of the screening pipeline. Callers wrap them with %w and test with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParse             = errors.New("document parse error")
	ErrMissingData       = errors.New("missing data")
	ErrModelUnavailable  = errors.New("model unavailable")
	ErrOutputMalformed   = errors.New("malformed model output")
	ErrGeneration        = errors.New("feedback generation error")
)
