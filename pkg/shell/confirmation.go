package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// Prompter asks the user to confirm an action, such as overwriting an
// existing export.
type Prompter interface {
	// Confirm displays message and reports whether the user answered yes.
	Confirm(message string) (bool, error)
}

// InteractivePrompter implements Prompter over plain streams.
type InteractivePrompter struct {
	reader io.Reader
	writer io.Writer
}

// NewInteractivePrompter creates an InteractivePrompter using stdin/stdout.
func NewInteractivePrompter() *InteractivePrompter {
	return NewInteractivePrompterWithIO(os.Stdin, os.Stdout)
}

// NewInteractivePrompterWithIO creates an InteractivePrompter with custom I/O.
func NewInteractivePrompterWithIO(reader io.Reader, writer io.Writer) *InteractivePrompter {
	return &InteractivePrompter{
		reader: reader,
		writer: writer,
	}
}

// Confirm displays the message followed by " [y/N]: " and reads one line.
// Only "yes" or "y" (case-insensitive) confirms; EOF means no.
func (p *InteractivePrompter) Confirm(message string) (bool, error) {
	fmt.Fprintf(p.writer, "%s [y/N]: ", message)

	scanner := bufio.NewScanner(p.reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("failed to read confirmation: %w", err)
		}
		return false, nil
	}
	return isYes(scanner.Text()), nil
}

// readlinePrompter asks through the shell's own line editor.
type readlinePrompter struct {
	rl *readline.Instance
}

func (p *readlinePrompter) Confirm(message string) (bool, error) {
	p.rl.SetPrompt(message + " [y/N]: ")
	defer p.rl.SetPrompt(prompt)

	line, err := p.rl.Readline()
	if err == readline.ErrInterrupt || err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return isYes(line), nil
}

func isYes(answer string) bool {
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "yes" || answer == "y"
}

var (
	_ Prompter = (*InteractivePrompter)(nil)
	_ Prompter = (*readlinePrompter)(nil)
)
