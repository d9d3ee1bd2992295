package errors

import "fmt"

// -----------------------------------------------------------------------------
// Data Errors
// -----------------------------------------------------------------------------

// MalformedTensor reports a shape mismatch in filter at the given position.
// Use layer/head = -1 when the mismatch is not tied to one slice.
func MalformedTensor(filter string, layer, head int, reason string) *HeddleError {
	return malformed("attn", filter, layer, head, reason)
}

// MalformedVectors reports a query/key vector shape mismatch.
func MalformedVectors(filter string, layer, head int, reason string) *HeddleError {
	return malformed("vectors", filter, layer, head, reason)
}

func malformed(part, filter string, layer, head int, reason string) *HeddleError {
	err := New(ErrMalformedTensor, CategoryData,
		fmt.Sprintf("%s for filter %q is malformed: %s", part, filter, reason)).
		WithContext("filter", filter).
		WithContext("part", part)
	if layer >= 0 {
		err.WithContextInt("layer", layer)
	}
	if head >= 0 {
		err.WithContextInt("head", head)
	}
	return AttachSuggestions(err)
}

// EmptySequence reports a filter with no tokens on the given side.
func EmptySequence(filter, side string) *HeddleError {
	return NewWithSuggestions(ErrEmptySequence, CategoryData,
		fmt.Sprintf("filter %q has no %s tokens", filter, side)).
		WithContext("filter", filter).
		WithContext("side", side)
}

// MissingVectors reports a filter without query/key vectors.
func MissingVectors(filter string) *HeddleError {
	return NewWithSuggestions(ErrMissingVectors, CategoryData,
		fmt.Sprintf("filter %q has no query/key vectors", filter)).
		WithContext("filter", filter)
}

// -----------------------------------------------------------------------------
// Selection Errors
// -----------------------------------------------------------------------------

// InvalidFilter reports an unknown filter name.
func InvalidFilter(name string) *HeddleError {
	return NewWithSuggestions(ErrInvalidFilter, CategorySelection,
		fmt.Sprintf("unknown filter %q", name)).
		WithContext("filter", name)
}

// InvalidLayerIndex reports a layer index outside [0, count).
func InvalidLayerIndex(index, count int) *HeddleError {
	return New(ErrInvalidLayerIndex, CategorySelection,
		fmt.Sprintf("layer %d out of range [0, %d)", index, count)).
		WithContextInt("index", index).
		WithContextInt("count", count)
}

// InvalidHeadIndex reports a head index outside [0, count).
func InvalidHeadIndex(index, count int) *HeddleError {
	return New(ErrInvalidHeadIndex, CategorySelection,
		fmt.Sprintf("head %d out of range [0, %d)", index, count)).
		WithContextInt("index", index).
		WithContextInt("count", count)
}

// InvalidTokenIndex reports a token index outside the sequence on side.
func InvalidTokenIndex(side string, index, count int) *HeddleError {
	return New(ErrInvalidTokenIndex, CategorySelection,
		fmt.Sprintf("%s token %d out of range [0, %d)", side, index, count)).
		WithContext("side", side).
		WithContextInt("index", index)
}

// LastActiveHead reports a rejected toggle of the only active head.
func LastActiveHead(head int) *HeddleError {
	return New(ErrLastActiveHead, CategorySelection,
		fmt.Sprintf("head %d is the only active head", head)).
		WithContextInt("head", head).
		WithSuggestion("Double-click a head to isolate it, or double-click the active head to show all heads")
}

// UnsupportedEvent reports an event that does not apply to view.
func UnsupportedEvent(event, view string) *HeddleError {
	return New(ErrUnsupportedEvent, CategorySelection,
		fmt.Sprintf("event %q does not apply to the %s view", event, view)).
		WithContext("event", event).
		WithContext("view", view)
}

// -----------------------------------------------------------------------------
// Config, IO and Export Errors
// -----------------------------------------------------------------------------

// ConfigNotFound creates an error for a missing config file.
func ConfigNotFound(path string) *HeddleError {
	return NewWithSuggestions(ErrConfigNotFound, CategoryConfig, "configuration file not found").
		WithContext("path", path)
}

// ConfigParseError creates an error for a config file that failed to parse.
func ConfigParseError(path string, cause error) *HeddleError {
	return WrapWithSuggestions(cause, ErrConfigParseFailed, CategoryConfig, "failed to parse configuration file").
		WithContext("path", path)
}

// ValidationRequired creates an error for a missing required field.
func ValidationRequired(field string) *HeddleError {
	return New(ErrValidationRequired, CategoryValidation,
		fmt.Sprintf("%s is required", field)).
		WithContext("field", field)
}

// ValidationInvalid creates an error for an invalid field value.
func ValidationInvalid(field, value, reason string) *HeddleError {
	return New(ErrValidationInvalidValue, CategoryValidation,
		fmt.Sprintf("invalid %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value)
}

// IOFileNotFound creates an error for a missing input file.
func IOFileNotFound(path string) *HeddleError {
	return NewWithSuggestions(ErrIOFileNotFound, CategoryIO, "file not found").
		WithContext("path", path)
}

// ExportWriteFailed creates an error for an export that could not be written.
func ExportWriteFailed(path, format string, cause error) *HeddleError {
	return WrapWithSuggestions(cause, ErrExportWriteFailed, CategoryRender,
		fmt.Sprintf("failed to write %s export", format)).
		WithContext("path", path).
		WithContext("format", format)
}

// ExportInvalidFormat creates an error for an unsupported export format.
func ExportInvalidFormat(format string, valid []string) *HeddleError {
	return New(ErrExportInvalidFormat, CategoryRender,
		fmt.Sprintf("unsupported export format %q", format)).
		WithContext("format", format).
		WithSuggestion(fmt.Sprintf("Use one of: %v", valid))
}

// VisualizationNotFound creates an error for an unknown container id.
func VisualizationNotFound(id string) *HeddleError {
	return New(ErrVisualizationNotFound, CategoryNetwork,
		fmt.Sprintf("no visualization mounted as %q", id)).
		WithContext("id", id)
}

// InternalPanic wraps a recovered panic value.
func InternalPanic(recovered interface{}) *HeddleError {
	return New(ErrInternalPanic, CategoryInternal,
		fmt.Sprintf("recovered from panic: %v", recovered))
}

// VisualizationExists creates an error for a container id that is already
// mounted.
func VisualizationExists(id string) *HeddleError {
	return New(ErrVisualizationExists, CategoryNetwork,
		fmt.Sprintf("a visualization is already mounted as %q", id)).
		WithContext("id", id).
		WithSuggestion("Omit root_div_id to have one generated, or DELETE the existing instance first")
}

// ServerStartFailed wraps a listener error of the host server.
func ServerStartFailed(addr string, cause error) *HeddleError {
	return Wrap(cause, ErrServerStartFailed, CategoryNetwork, "server failed to start").
		WithContext("address", addr).
		WithSuggestion("Check that the port is free or pick another with --port")
}
