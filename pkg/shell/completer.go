package shell

import (
	"strings"

	"github.com/chzyer/readline"
)

// commands is the static list of available shell commands (without the / prefix).
var commands = []string{
	"quit",
	"exit",
	"q",
	"help",
	"h",
	"state",
	"shape",
	"tokens",
	"ops",
	"hover",
	"unhover",
	"click",
	"toggle",
	"dblclick",
	"solo",
	"layer",
	"head",
	"filter",
	"expand",
	"thumb",
	"escape",
	"esc",
	"svg",
	"png",
}

// sides completes the first argument of /hover.
var sides = []string{"left", "right"}

// ShellCompleter provides tab completion for commands and their arguments.
// It implements the readline.AutoCompleter interface.
type ShellCompleter struct {
	filters func() []string
}

// NewShellCompleter creates a completer. filters supplies the filter names
// for /filter; it may be nil.
func NewShellCompleter(filters func() []string) *ShellCompleter {
	return &ShellCompleter{filters: filters}
}

// Ensure ShellCompleter implements readline.AutoCompleter at compile time.
var _ readline.AutoCompleter = (*ShellCompleter)(nil)

// Do implements readline.AutoCompleter. It returns candidate suffixes for
// the word under the cursor and the length of that word.
func (c *ShellCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if len(line) == 0 || pos <= 0 {
		return nil, 0
	}
	if pos > len(line) {
		pos = len(line)
	}

	lineStr := string(line[:pos])
	wordStart := findWordStart(lineStr)
	currentWord := lineStr[wordStart:]

	if wordStart == 0 {
		if strings.HasPrefix(currentWord, "/") {
			matches, _ := complete(strings.TrimPrefix(currentWord, "/"), commands)
			return matches, len([]rune(currentWord))
		}
		return nil, 0
	}

	fields := strings.Fields(lineStr[:wordStart])
	if len(fields) != 1 {
		return nil, 0
	}
	switch fields[0] {
	case "/filter":
		if c.filters == nil {
			return nil, 0
		}
		return complete(currentWord, c.filters())
	case "/hover":
		return complete(currentWord, sides)
	}
	return nil, 0
}

// findWordStart returns the index where the current word begins.
func findWordStart(s string) int {
	return strings.LastIndexAny(s, " \t") + 1
}

// complete returns the suffixes of candidates that extend prefix, each
// followed by a space.
func complete(prefix string, candidates []string) ([][]rune, int) {
	var matches [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			matches = append(matches, []rune(cand[len(prefix):]+" "))
		}
	}
	return matches, len([]rune(prefix))
}
