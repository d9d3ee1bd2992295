package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// HeddleError Tests
// -----------------------------------------------------------------------------

func TestHeddleError_Error(t *testing.T) {
	err := New(ErrInvalidFilter, CategorySelection, "unknown filter")
	if got := err.Error(); got != "INVALID_FILTER: unknown filter" {
		t.Errorf("unexpected Error(): %q", got)
	}

	wrapped := Wrap(fmt.Errorf("boom"), ErrIOReadFailed, CategoryIO, "read failed")
	if got := wrapped.Error(); got != "IO_READ_FAILED: read failed: boom" {
		t.Errorf("unexpected Error() with cause: %q", got)
	}
}

func TestHeddleError_IsMatchesByCode(t *testing.T) {
	a := InvalidLayerIndex(7, 2)
	b := New(ErrInvalidLayerIndex, CategorySelection, "other message")

	if !stderrors.Is(a, b) {
		t.Error("expected errors with the same code to match")
	}
	if stderrors.Is(a, New(ErrInvalidHeadIndex, CategorySelection, "")) {
		t.Error("expected errors with different codes not to match")
	}
}

func TestAsHeddleError_ThroughWrap(t *testing.T) {
	inner := MalformedTensor("all", 1, -1, "head count mismatch")
	outer := fmt.Errorf("loading: %w", inner)

	he, ok := AsHeddleError(outer)
	if !ok {
		t.Fatal("expected to find HeddleError in chain")
	}
	if he.Code != ErrMalformedTensor {
		t.Errorf("expected code %q, got %q", ErrMalformedTensor, he.Code)
	}
	if !IsCategory(outer, CategoryData) {
		t.Error("expected data category")
	}
}

func TestMalformedTensor_Context(t *testing.T) {
	err := MalformedTensor("aa", 2, 3, "bad")

	if err.Context["filter"] != "aa" || err.Context["layer"] != "2" || err.Context["head"] != "3" {
		t.Errorf("unexpected context: %v", err.Context)
	}
	if !err.HasSuggestions() {
		t.Error("expected registry suggestions")
	}
	for _, s := range err.Suggestions {
		if strings.Contains(s, "vector size") {
			t.Error("vector suggestion should only apply to vector errors")
		}
	}

	vec := MalformedVectors("aa", -1, -1, "bad")
	if _, ok := vec.Context["layer"]; ok {
		t.Error("expected no layer context for layer -1")
	}
	found := false
	for _, s := range vec.Suggestions {
		if strings.Contains(s, "vector size") {
			found = true
		}
	}
	if !found {
		t.Error("expected vector suggestion for vector errors")
	}
}

func TestMarkRecovered(t *testing.T) {
	err := InvalidHeadIndex(9, 4).MarkRecovered()
	if !IsRecovered(err) {
		t.Error("expected recovered flag")
	}
	if IsRecovered(fmt.Errorf("plain")) {
		t.Error("plain errors are never recovered")
	}
}

func TestCodeCategory(t *testing.T) {
	tests := []struct {
		code string
		want Category
	}{
		{ErrMalformedTensor, CategoryData},
		{ErrEmptySequence, CategoryData},
		{ErrInvalidFilter, CategorySelection},
		{ErrLastActiveHead, CategorySelection},
		{ErrConfigNotFound, CategoryConfig},
		{ErrVisualizationNotFound, CategoryNetwork},
		{ErrExportWriteFailed, CategoryRender},
		{"SOMETHING_ELSE", CategoryInternal},
	}
	for _, tt := range tests {
		if got := CodeCategory(tt.code); got != tt.want {
			t.Errorf("CodeCategory(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// -----------------------------------------------------------------------------
// Display Tests
// -----------------------------------------------------------------------------

func TestSprint_NoColor(t *testing.T) {
	err := InvalidFilter("xx")
	out := Sprint(err)

	if strings.Contains(out, "\033[") {
		t.Error("expected no ANSI codes")
	}
	if !strings.HasPrefix(out, "ERROR [INVALID_FILTER]: unknown filter \"xx\"") {
		t.Errorf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "filter: xx") {
		t.Error("expected context line")
	}
	if !strings.Contains(out, "→ Use one of the filter names") {
		t.Error("expected suggestion line")
	}
}

func TestFormatter_Color(t *testing.T) {
	f := &Formatter{UseColor: true, Indent: "  "}
	out := f.Format(fmt.Errorf("plain failure"))
	if !strings.Contains(out, colorRed) {
		t.Error("expected color codes")
	}
	if !strings.HasSuffix(out, "plain failure") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRegistry_Priority(t *testing.T) {
	r := NewRegistry()
	r.Register("X", "low").RegisterWithPriority("X", "high", 5)
	got := r.Get("X", nil)
	if len(got) != 2 || got[0] != "high" {
		t.Errorf("expected high priority first, got %v", got)
	}
}
