// Package shell provides the interactive REPL for inspecting one mounted
// visualization from a terminal.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
	"github.com/r3d91ll/heddle/pkg/export"
	"github.com/r3d91ll/heddle/pkg/interact"
	"github.com/r3d91ll/heddle/pkg/render"
)

const prompt = "\033[32mheddle>\033[0m "

// Shell is the interactive command-line interface.
type Shell struct {
	ctrl      *interact.Controller
	rl        *readline.Instance
	out       io.Writer
	prompter  Prompter
	exportDir string
	png       *export.PNGConfig
	lastOps   []render.Op
}

// Config holds shell configuration.
type Config struct {
	HistoryFile string
	ExportDir   string
	PNGScale    int
}

// New creates a new interactive shell bound to ctrl.
func New(ctrl *interact.Controller, cfg Config) (*Shell, error) {
	completer := NewShellCompleter(func() []string {
		return ctrl.State().Data().FilterNames()
	})

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, err
	}

	s := newShell(ctrl, os.Stdout, &readlinePrompter{rl: rl}, cfg)
	s.rl = rl
	return s, nil
}

func newShell(ctrl *interact.Controller, out io.Writer, prompter Prompter, cfg Config) *Shell {
	png := export.DefaultPNGConfig()
	if cfg.PNGScale > 0 {
		png.Scale = cfg.PNGScale
	}
	dir := cfg.ExportDir
	if dir == "" {
		dir = "."
	}
	return &Shell{
		ctrl:      ctrl,
		out:       out,
		prompter:  prompter,
		exportDir: dir,
		png:       png,
	}
}

// Run starts the interactive loop.
func (s *Shell) Run(ctx context.Context) error {
	defer s.rl.Close()

	snap := s.ctrl.Snapshot()
	fmt.Fprintf(s.out, "Inspecting %s (%s view, filter %q).\n", s.ctrl.ID(), snap.View, snap.Filter)
	fmt.Fprintln(s.out, "Commands: /hover, /unhover, /click, /layer, /filter, /state, /shape, /svg, /png, /help, /quit")
	fmt.Fprintln(s.out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		if err := s.Execute(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(s.out, herrors.Sprint(err))
		}
	}
}

var errQuit = fmt.Errorf("quit")

// Execute runs one input line. It returns errQuit for /quit.
func (s *Shell) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		fmt.Fprintln(s.out, "Commands start with /. Type /help for the list.")
		return nil
	}

	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "/quit", "/exit", "/q":
		return errQuit

	case "/help", "/h":
		s.printHelp()

	case "/state":
		s.printState()

	case "/shape":
		return WriteShapes(s.out, s.ctrl.State().Data())

	case "/tokens":
		s.printTokens()

	case "/ops":
		s.printOps()

	case "/hover":
		if len(args) != 2 {
			return usage("/hover <left|right> <index>")
		}
		i, err := intArg("index", args[1])
		if err != nil {
			return err
		}
		s.apply(interact.Event{Type: interact.EventHover, Side: args[0], Index: i})

	case "/unhover":
		s.apply(interact.Event{Type: interact.EventUnhover})

	case "/click", "/toggle":
		return s.applyInt(cmd, args, "head", func(h int) interact.Event {
			return interact.Event{Type: interact.EventClick, Head: h}
		})

	case "/dblclick", "/solo":
		return s.applyInt(cmd, args, "head", func(h int) interact.Event {
			return interact.Event{Type: interact.EventDblClick, Head: h}
		})

	case "/layer":
		return s.applyInt(cmd, args, "layer", func(l int) interact.Event {
			return interact.Event{Type: interact.EventLayer, Layer: l}
		})

	case "/head":
		return s.applyInt(cmd, args, "head", func(h int) interact.Event {
			return interact.Event{Type: interact.EventHead, Head: h}
		})

	case "/filter":
		if len(args) != 1 {
			return usage("/filter <name>")
		}
		s.apply(interact.Event{Type: interact.EventFilter, Filter: args[0]})

	case "/expand":
		s.apply(interact.Event{Type: interact.EventExpand})

	case "/thumb":
		if len(args) != 2 {
			return usage("/thumb <layer> <head>")
		}
		l, err := intArg("layer", args[0])
		if err != nil {
			return err
		}
		h, err := intArg("head", args[1])
		if err != nil {
			return err
		}
		s.apply(interact.Event{Type: interact.EventThumbnail, Layer: l, Head: h})

	case "/escape", "/esc":
		s.apply(interact.Event{Type: interact.EventKey, Key: interact.KeyEscape})

	case "/svg":
		return s.export(export.FormatSVG, args)

	case "/png":
		return s.export(export.FormatPNG, args)

	default:
		fmt.Fprintf(s.out, "Unknown command: %s\n", cmd)
	}

	return nil
}

// apply sends ev to the controller and reports the repaint.
func (s *Shell) apply(ev interact.Event) {
	res := s.ctrl.Handle(ev)
	s.lastOps = res.Ops
	fmt.Fprintf(s.out, "%s: %s repaint, %d ops\n", ev.Type, res.ScopeName(), len(res.Ops))
	if res.Recovered != nil {
		fmt.Fprintln(s.out, herrors.Sprint(res.Recovered))
	}
}

func (s *Shell) applyInt(cmd string, args []string, name string, build func(int) interact.Event) error {
	if len(args) != 1 {
		return usage(cmd + " <" + name + ">")
	}
	v, err := intArg(name, args[0])
	if err != nil {
		return err
	}
	s.apply(build(v))
	return nil
}

// export writes a snapshot into the export directory, asking before an
// existing file is replaced.
func (s *Shell) export(format export.Format, args []string) error {
	name := s.ctrl.ID()
	if len(args) > 0 {
		name = strings.TrimSuffix(args[0], format.Extension())
	}

	path := filepath.Join(s.exportDir, name+format.Extension())
	if _, err := os.Stat(path); err == nil {
		ok, err := s.prompter.Confirm(fmt.Sprintf("%s exists. Overwrite?", path))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(s.out, "Export cancelled.")
			return nil
		}
	}

	written, err := export.WriteFile(s.exportDir, name, format, s.ctrl, s.png)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Wrote %s\n", written)
	return nil
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, "Interaction:")
	fmt.Fprintln(s.out, "  /hover <left|right> <i>  - Hover token i")
	fmt.Fprintln(s.out, "  /unhover                 - Clear the hover")
	fmt.Fprintln(s.out, "  /click <head>            - Toggle a head (head view)")
	fmt.Fprintln(s.out, "  /dblclick <head>         - Show only a head, or all heads again")
	fmt.Fprintln(s.out, "  /layer <n>               - Select a layer")
	fmt.Fprintln(s.out, "  /head <n>                - Select a head (neuron view)")
	fmt.Fprintln(s.out, "  /filter <name>           - Switch attention filter")
	fmt.Fprintln(s.out, "  /expand                  - Toggle query/key detail (neuron view)")
	fmt.Fprintln(s.out, "  /thumb <layer> <head>    - Open or close a thumbnail (model view)")
	fmt.Fprintln(s.out, "  /escape                  - Clear hover and close detail")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Inspection:")
	fmt.Fprintln(s.out, "  /state                   - Show the selection state")
	fmt.Fprintln(s.out, "  /shape                   - Show filter dimensions")
	fmt.Fprintln(s.out, "  /tokens                  - List tokens of the active filter")
	fmt.Fprintln(s.out, "  /ops                     - Show the last repaint's operations")
	fmt.Fprintln(s.out, "  /svg [name]              - Export the scene as SVG")
	fmt.Fprintln(s.out, "  /png [name]              - Export the attention heatmap as PNG")
	fmt.Fprintln(s.out, "  /quit                    - Exit")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Tip: Use Tab to autocomplete /commands and filter names")
}

func (s *Shell) printState() {
	snap := s.ctrl.Snapshot()
	fmt.Fprintf(s.out, "Visualization: %s\n", s.ctrl.ID())
	fmt.Fprintf(s.out, "  View: %s (%s)\n", snap.View, snap.Mode)
	fmt.Fprintf(s.out, "  Filter: %s of %v\n", snap.Filter, snap.Filters)
	fmt.Fprintf(s.out, "  Layer: %d  Head: %d\n", snap.Layer, snap.Head)
	fmt.Fprintf(s.out, "  Active heads: %v\n", snap.Heads)
	if snap.Hovered != nil {
		fmt.Fprintf(s.out, "  Hovered: %s %d\n", snap.Hovered.Side, snap.Hovered.Index)
	}
	if snap.Drilldown != nil {
		fmt.Fprintf(s.out, "  Detail: layer %d head %d\n", snap.Drilldown.Layer, snap.Drilldown.Head)
	}
	canvas := s.ctrl.Canvas()
	fmt.Fprintf(s.out, "  Canvas: %gx%g\n", canvas.W, canvas.H)
}

func (s *Shell) printTokens() {
	f := s.ctrl.State().ActiveFilter()
	if f == nil {
		fmt.Fprintln(s.out, "No tokens.")
		return
	}
	for _, side := range []struct {
		name   string
		tokens []string
	}{{"left", f.LeftTokens}, {"right", f.RightTokens}} {
		fmt.Fprintf(s.out, "%s:\n", side.name)
		for i, tok := range side.tokens {
			fmt.Fprintf(s.out, "  %3d  %q\n", i, tok)
		}
	}
}

func (s *Shell) printOps() {
	if len(s.lastOps) == 0 {
		fmt.Fprintln(s.out, "No operations yet.")
		return
	}
	counts := make(map[string]int)
	for _, op := range s.lastOps {
		counts[op.Op]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(s.out, "  %-7s %d\n", k, counts[k])
	}
}

func usage(u string) error {
	return herrors.ValidationInvalid("arguments", u, "usage: "+u)
}

func intArg(name, v string) (int, error) {
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, herrors.ValidationInvalid(name, v, "must be an integer")
	}
	return i, nil
}
