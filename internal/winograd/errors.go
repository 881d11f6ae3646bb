package winograd

import "github.com/pkg/errors"

// Validation failures. Every error returned by Validate*, NewInfo and the
// Configure methods wraps exactly one of these; match with errors.Is.
var (
	ErrUnsupportedDataType   = errors.New("unsupported data type")
	ErrUnsupportedKernel     = errors.New("unsupported kernel shape")
	ErrUnsupportedPadding    = errors.New("unsupported padding")
	ErrOutputShapeMismatch   = errors.New("output shape mismatch")
	ErrBiasShapeMismatch     = errors.New("bias shape mismatch")
	ErrWorkspaceTooSmall     = errors.New("workspace too small")
	ErrInvalidShape          = errors.New("invalid shape")
	ErrConfigurationMismatch = errors.New("configuration mismatch")
	ErrWeightsNotPrepared    = errors.New("weights not prepared")
)
