package errors

import "sort"

// Suggestion is a remediation hint with optional context conditions.
type Suggestion struct {
	// Text is the suggestion message displayed to the user.
	Text string

	// Conditions must all match the error context. Empty matches any context.
	Conditions map[string]string

	// Priority orders suggestions, highest first.
	Priority int
}

// Matches returns true if the suggestion's conditions match ctx.
func (s *Suggestion) Matches(ctx map[string]string) bool {
	for key, value := range s.Conditions {
		if ctx[key] != value {
			return false
		}
	}
	return true
}

// Registry maps error codes to remediation suggestions.
type Registry struct {
	suggestions map[string][]Suggestion
}

// NewRegistry creates an empty suggestion registry.
func NewRegistry() *Registry {
	return &Registry{
		suggestions: make(map[string][]Suggestion),
	}
}

// Register adds an unconditional suggestion for code.
func (r *Registry) Register(code, text string) *Registry {
	r.suggestions[code] = append(r.suggestions[code], Suggestion{Text: text})
	return r
}

// RegisterWithCondition adds a suggestion that only applies when ctx matches.
func (r *Registry) RegisterWithCondition(code, text string, conditions map[string]string) *Registry {
	r.suggestions[code] = append(r.suggestions[code], Suggestion{
		Text:       text,
		Conditions: conditions,
	})
	return r
}

// RegisterWithPriority adds a suggestion with explicit priority.
func (r *Registry) RegisterWithPriority(code, text string, priority int) *Registry {
	r.suggestions[code] = append(r.suggestions[code], Suggestion{
		Text:     text,
		Priority: priority,
	})
	return r
}

// Get returns the suggestions for code that match ctx, highest priority first.
func (r *Registry) Get(code string, ctx map[string]string) []string {
	var matching []Suggestion
	for _, s := range r.suggestions[code] {
		if s.Matches(ctx) {
			matching = append(matching, s)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].Priority > matching[j].Priority
	})

	result := make([]string, len(matching))
	for i, s := range matching {
		result[i] = s.Text
	}
	return result
}

// HasSuggestions returns true if any suggestions exist for code.
func (r *Registry) HasSuggestions(code string) bool {
	return len(r.suggestions[code]) > 0
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global registry with built-in suggestions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func init() {
	defaultRegistry.
		RegisterWithPriority(ErrMalformedTensor, "Check that every layer has the same number of heads", 2).
		RegisterWithPriority(ErrMalformedTensor, "Check that each head matrix is len(left_text) x len(right_text)", 1).
		RegisterWithCondition(ErrMalformedTensor, "Query/key vectors must share one vector size across all layers and heads",
			map[string]string{"part": "vectors"}).
		Register(ErrEmptySequence, "Pass at least one token for both left_text and right_text").
		Register(ErrNoFilters, "Supply at least one named filter under \"filters\"").
		Register(ErrMissingVectors, "Include queries and keys in the filter, or use the head or model view").
		Register(ErrInvalidFilter, "Use one of the filter names present in the input data").
		Register(ErrConfigNotFound, "Run 'heddle init' to create a default configuration file").
		Register(ErrConfigParseFailed, "Check the YAML syntax of the configuration file").
		Register(ErrIOFileNotFound, "Check the path to the attention data file").
		Register(ErrExportWriteFailed, "Check that the export directory exists and is writable")
}

// AttachSuggestions appends registry suggestions matching the error context.
func AttachSuggestions(err *HeddleError) *HeddleError {
	if err == nil {
		return nil
	}
	if s := defaultRegistry.Get(err.Code, err.Context); len(s) > 0 {
		err.Suggestions = append(err.Suggestions, s...)
	}
	return err
}

// NewWithSuggestions creates a HeddleError and attaches registry suggestions.
func NewWithSuggestions(code string, category Category, message string) *HeddleError {
	return AttachSuggestions(New(code, category, message))
}

// WrapWithSuggestions wraps cause and attaches registry suggestions.
func WrapWithSuggestions(cause error, code string, category Category, message string) *HeddleError {
	return AttachSuggestions(Wrap(cause, code, category, message))
}
