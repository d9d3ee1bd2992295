package shell

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestInteractivePrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "yes\n", true},
		{"y", "y\n", true},
		{"upper", "  YES  \n", true},
		{"no", "no\n", false},
		{"empty", "\n", false},
		{"other", "maybe\n", false},
		{"eof", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewInteractivePrompterWithIO(strings.NewReader(tt.input), &out)

			got, err := p.Confirm("Overwrite vis.svg?")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if out.String() != "Overwrite vis.svg? [y/N]: " {
				t.Errorf("unexpected prompt %q", out.String())
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestInteractivePrompter_ReadError(t *testing.T) {
	p := NewInteractivePrompterWithIO(failingReader{}, &bytes.Buffer{})

	got, err := p.Confirm("Overwrite?")
	if err == nil {
		t.Fatal("expected error")
	}
	if got {
		t.Error("expected false on error")
	}
	if !strings.Contains(err.Error(), "broken pipe") {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestIsYes(t *testing.T) {
	for _, s := range []string{"y", "Y", "yes", "Yes", " y "} {
		if !isYes(s) {
			t.Errorf("expected %q to confirm", s)
		}
	}
	for _, s := range []string{"", "n", "yep", "ye"} {
		if isYes(s) {
			t.Errorf("expected %q not to confirm", s)
		}
	}
}
