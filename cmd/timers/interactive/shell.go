// Package interactive provides the interactive command-line interface
// for the timer service.
package interactive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/modzero/timers-go/pkg/event"
	"github.com/modzero/timers-go/pkg/service"
	"github.com/modzero/timers-go/pkg/timer"
)

// Shell handles interactive mode for the timers CLI.
type Shell struct {
	svc     *service.Service
	hub     *event.Hub
	presets Presets
	sub     *event.Subscription
	rl      *readline.Instance
	out     io.Writer

	mu    sync.Mutex
	watch bool
}

// New creates a new interactive shell reading events from hub.
func New(svc *service.Service, hub *event.Hub, presets Presets) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "timers> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(svc, hub, presets, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(svc *service.Service, hub *event.Hub, presets Presets, out io.Writer) *Shell {
	s := &Shell{
		svc:     svc,
		hub:     hub,
		presets: presets,
		out:     out,
	}
	if hub != nil {
		s.sub = hub.Subscribe(0)
	}
	return s
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	if s.sub != nil {
		go s.pumpEvents(ctx, s.sub.C())
	}

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.Execute(line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the shell should exit.
func (s *Shell) Execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "make", "m", "new":
		s.cmdMake(args)

	case "start", "s":
		s.cmdStart(args)

	case "reset", "r":
		s.cmdReset(args)

	case "delete", "rm", "d":
		s.cmdDelete(args)

	case "list", "ls", "l":
		s.cmdList()

	case "show":
		s.cmdShow(args)

	case "watch", "w":
		s.cmdWatch(args)

	case "status", "st":
		s.cmdStatus()

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Timer Commands:
  make <duration> [label]  - Create a timer (90, 1m30s or a preset name)
  start <id>               - Start or restart a timer
  reset <id> [duration]    - Stop a timer, optionally changing its duration
  delete <id>              - Remove a timer
  list                     - List timers
  show <id>                - Print a timer's wire snapshot
  watch [on|off]           - Toggle printing of progress updates
  status                   - Show timer, task and subscriber counts

  Ids may be abbreviated to any unique prefix.

  help                     - Show this help
  quit                     - Exit`)
}

func (s *Shell) cmdMake(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: make <duration> [label]")
		return
	}

	d, err := parseDuration(args[0], s.presets)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	label := strings.Join(args[1:], " ")
	if label == "" && s.presets != nil {
		if _, err := s.presets.Preset(args[0]); err == nil {
			label = args[0]
		}
	}

	t := s.svc.Make(d, label)
	fmt.Fprintf(s.out, "Created %s (%s)\n", t.ID(), formatClock(d))
}

func (s *Shell) cmdStart(args []string) {
	id, ok := s.resolve(args, "start <id>")
	if !ok {
		return
	}

	t, err := s.svc.Start(id)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Started %s (%s)\n", shortID(t), formatClock(t.Duration()))
}

func (s *Shell) cmdReset(args []string) {
	id, ok := s.resolve(args, "reset <id> [duration]")
	if !ok {
		return
	}

	current, err := s.svc.Get(id)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	d := current.Duration()
	if len(args) > 1 {
		if d, err = parseDuration(args[1], s.presets); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
	}

	t, err := s.svc.Reset(id, d)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Reset %s (%s)\n", shortID(t), formatClock(t.Duration()))
}

func (s *Shell) cmdDelete(args []string) {
	id, ok := s.resolve(args, "delete <id>")
	if !ok {
		return
	}

	t, found := s.svc.Delete(id)
	if !found {
		fmt.Fprintf(s.out, "Error: timer %s not found\n", id)
		return
	}
	fmt.Fprintf(s.out, "Deleted %s\n", shortID(t))
}

func (s *Shell) cmdList() {
	timers := s.svc.List()
	if len(timers) == 0 {
		fmt.Fprintln(s.out, "No timers.")
		return
	}

	fmt.Fprintf(s.out, "%-8s  %-7s  %9s  %9s  %s\n", "ID", "STATE", "DURATION", "REMAINING", "LABEL")
	for _, t := range timers {
		fmt.Fprintf(s.out, "%-8s  %-7s  %9s  %9s  %s\n",
			shortID(t), state(t), formatClock(t.Duration()), formatClock(t.Remaining()), t.Label())
	}
}

func (s *Shell) cmdShow(args []string) {
	id, ok := s.resolve(args, "show <id>")
	if !ok {
		return
	}

	t, err := s.svc.Get(id)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, string(data))
}

func (s *Shell) cmdWatch(args []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case len(args) == 0:
		s.watch = !s.watch
	case strings.EqualFold(args[0], "on"):
		s.watch = true
	case strings.EqualFold(args[0], "off"):
		s.watch = false
	default:
		fmt.Fprintln(s.out, "Usage: watch [on|off]")
		return
	}

	if s.watch {
		fmt.Fprintln(s.out, "Watching updates")
	} else {
		fmt.Fprintln(s.out, "Not watching updates")
	}
}

func (s *Shell) cmdStatus() {
	fmt.Fprintf(s.out, "Timers:      %d\n", s.svc.Len())
	fmt.Fprintf(s.out, "Tick tasks:  %d/%d\n", s.svc.Running(), s.svc.MaxRunning())
	if s.hub != nil {
		fmt.Fprintf(s.out, "Subscribers: %d\n", s.hub.Count())
	}
	if s.sub != nil {
		fmt.Fprintf(s.out, "Dropped:     %d\n", s.sub.Dropped())
	}
}

func (s *Shell) watching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watch
}

// resolve parses the timer id argument, printing usage or errors itself.
func (s *Shell) resolve(args []string, usage string) (uuid.UUID, bool) {
	if len(args) < 1 {
		fmt.Fprintf(s.out, "Usage: %s\n", usage)
		return uuid.Nil, false
	}

	id, err := resolveID(args[0], s.svc.List())
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return uuid.Nil, false
	}
	return id, true
}

// pumpEvents prints events from the service until ctx ends or c closes.
func (s *Shell) pumpEvents(ctx context.Context, c <-chan event.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-c:
			if !ok {
				return
			}
			s.printEvent(e)
		}
	}
}

func (s *Shell) printEvent(e event.Event) {
	t := e.Timer
	switch e.Kind {
	case event.KindDone:
		if t.Label() != "" {
			fmt.Fprintf(s.out, "\n%s %q done (%s)\n", shortID(t), t.Label(), formatClock(t.Duration()))
		} else {
			fmt.Fprintf(s.out, "\n%s done (%s)\n", shortID(t), formatClock(t.Duration()))
		}
	case event.KindUpdate:
		if s.watching() {
			fmt.Fprintf(s.out, "%s %s remaining\n", shortID(t), formatClock(t.Remaining()))
		}
	}
}

func shortID(t timer.Timer) string {
	return t.ID().String()[:8]
}
