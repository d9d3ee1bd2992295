package errors

// -----------------------------------------------------------------------------
// Data Error Codes
// -----------------------------------------------------------------------------
// Use these codes for errors detected while loading a dataset.

const (
	// ErrMalformedTensor indicates token counts, head counts or vector sizes
	// disagree with the tensor shape. Fatal at load.
	ErrMalformedTensor = "MALFORMED_TENSOR"

	// ErrEmptySequence indicates a filter has zero tokens on a side.
	// Recovered by rendering an empty-state placeholder.
	ErrEmptySequence = "EMPTY_SEQUENCE"

	// ErrNoFilters indicates the input contained no filters at all.
	ErrNoFilters = "NO_FILTERS"

	// ErrMissingVectors indicates the neuron view was requested for a
	// filter without query/key vectors.
	ErrMissingVectors = "MISSING_VECTORS"
)

// -----------------------------------------------------------------------------
// Selection Error Codes
// -----------------------------------------------------------------------------
// Use these codes for out-of-range interaction requests. They are recovered
// by clamping.

const (
	// ErrInvalidFilter indicates an unknown filter name.
	ErrInvalidFilter = "INVALID_FILTER"

	// ErrInvalidLayerIndex indicates a layer index outside [0, numLayers).
	ErrInvalidLayerIndex = "INVALID_LAYER_INDEX"

	// ErrInvalidHeadIndex indicates a head index outside [0, numHeads).
	ErrInvalidHeadIndex = "INVALID_HEAD_INDEX"

	// ErrInvalidTokenIndex indicates a hovered token index outside the sequence.
	ErrInvalidTokenIndex = "INVALID_TOKEN_INDEX"

	// ErrLastActiveHead indicates a toggle that would deactivate every head.
	ErrLastActiveHead = "LAST_ACTIVE_HEAD"

	// ErrUnsupportedEvent indicates an event that does not apply to the
	// current view.
	ErrUnsupportedEvent = "UNSUPPORTED_EVENT"
)

// -----------------------------------------------------------------------------
// Configuration Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = "CONFIG_NOT_FOUND"

	// ErrConfigParseFailed indicates the configuration file could not be parsed.
	ErrConfigParseFailed = "CONFIG_PARSE_FAILED"

	// ErrConfigInvalid indicates configuration values are invalid.
	ErrConfigInvalid = "CONFIG_INVALID"

	// ErrConfigWriteFailed indicates the config file could not be written.
	ErrConfigWriteFailed = "CONFIG_WRITE_FAILED"
)

// -----------------------------------------------------------------------------
// Validation Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrValidationRequired indicates a required field is missing.
	ErrValidationRequired = "VALIDATION_REQUIRED"

	// ErrValidationInvalidValue indicates a value is invalid.
	ErrValidationInvalidValue = "VALIDATION_INVALID_VALUE"

	// ErrValidationOutOfRange indicates a value is outside the allowed range.
	ErrValidationOutOfRange = "VALIDATION_OUT_OF_RANGE"
)

// -----------------------------------------------------------------------------
// Network Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrVisualizationNotFound indicates no visualization is mounted under an id.
	ErrVisualizationNotFound = "VIS_NOT_FOUND"

	// ErrVisualizationExists indicates a container id is already mounted.
	ErrVisualizationExists = "VIS_ALREADY_EXISTS"

	// ErrServerStartFailed indicates the host server could not bind.
	ErrServerStartFailed = "SERVER_START_FAILED"
)

// -----------------------------------------------------------------------------
// I/O and Export Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrIOReadFailed indicates a file read operation failed.
	ErrIOReadFailed = "IO_READ_FAILED"

	// ErrIOFileNotFound indicates a file was not found.
	ErrIOFileNotFound = "IO_FILE_NOT_FOUND"

	// ErrIOUnmarshalFailed indicates data unmarshaling failed.
	ErrIOUnmarshalFailed = "IO_UNMARSHAL_FAILED"

	// ErrExportFailed indicates a general export failure.
	ErrExportFailed = "EXPORT_FAILED"

	// ErrExportWriteFailed indicates the export file could not be written.
	ErrExportWriteFailed = "EXPORT_WRITE_FAILED"

	// ErrExportInvalidFormat indicates an unsupported export format.
	ErrExportInvalidFormat = "EXPORT_INVALID_FORMAT"
)

// -----------------------------------------------------------------------------
// Internal Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrInternalError indicates an unexpected internal error.
	ErrInternalError = "INTERNAL_ERROR"

	// ErrInternalPanic indicates a panic was recovered.
	ErrInternalPanic = "INTERNAL_PANIC"
)

// CodeCategory returns the category for a given error code.
// Returns CategoryInternal if the code is not recognized.
func CodeCategory(code string) Category {
	switch code {
	case ErrMalformedTensor, ErrEmptySequence, ErrNoFilters, ErrMissingVectors:
		return CategoryData

	case ErrInvalidFilter, ErrInvalidLayerIndex, ErrInvalidHeadIndex,
		ErrInvalidTokenIndex, ErrLastActiveHead, ErrUnsupportedEvent:
		return CategorySelection

	case ErrConfigNotFound, ErrConfigParseFailed, ErrConfigInvalid, ErrConfigWriteFailed:
		return CategoryConfig

	case ErrValidationRequired, ErrValidationInvalidValue, ErrValidationOutOfRange:
		return CategoryValidation

	case ErrVisualizationNotFound, ErrVisualizationExists, ErrServerStartFailed:
		return CategoryNetwork

	case ErrIOReadFailed, ErrIOFileNotFound, ErrIOUnmarshalFailed:
		return CategoryIO

	case ErrExportFailed, ErrExportWriteFailed, ErrExportInvalidFormat:
		return CategoryRender

	default:
		return CategoryInternal
	}
}
