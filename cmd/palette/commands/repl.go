package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/palette/am"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/logger"
	"github.com/teranos/palette/palette"
)

// ReplCmd runs an interactive palette session
var ReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive command palette",
	Long: `Read palette inputs line by line. Every input is handled and its outcome
is recorded, so suggestions improve as you go.

Lines starting with ':' are session commands:
  :suggest [partial]         ranked suggestions
  :search <term> [type...]   global search
  :resolve <type> <id>       resolve one identifier
  :quit                      leave the session`,
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}

	s := &session{svc: svc, rctx: callerContext(), out: cmd.OutOrStdout()}
	defer func() { s.svc.Close() }()

	if w := s.watchConfig(); w != nil {
		defer w.Close()
		go w.Run(cmd.Context())
	}
	return s.run(cmd, cmd.InOrStdin())
}

type session struct {
	svc  *palette.Service
	rctx entity.Context
	out  io.Writer

	mu      sync.Mutex
	pending *am.Config
}

// watchConfig follows the config file the session was started from, so
// edits apply without restarting.
func (s *session) watchConfig() *am.Watcher {
	path, load := configPath, func() (*am.Config, error) { return am.LoadFromFile(configPath) }
	if path == "" {
		path = am.ProjectConfigPath()
		load = func() (*am.Config, error) {
			am.Reset()
			return am.Load()
		}
	}
	if path == "" {
		return nil
	}

	w, err := am.NewWatcher(path, am.WithLoader(load), am.WithWatcherLogger(logger.Logger))
	if err != nil {
		logger.Logger.Warnw("config hot reload disabled", "path", path, logger.FieldError, err)
		return nil
	}
	w.OnReload(func(cfg *am.Config) error {
		s.mu.Lock()
		s.pending = withFlagOverrides(cfg)
		s.mu.Unlock()
		return nil
	})
	return w
}

// applyPending swaps in a service built from a reloaded config.
func (s *session) applyPending() {
	s.mu.Lock()
	cfg := s.pending
	s.pending = nil
	s.mu.Unlock()
	if cfg == nil {
		return
	}

	svc, err := openServiceWith(cfg)
	if err != nil {
		fmt.Fprintln(s.out, pterm.Error.Sprintf("keeping previous configuration: %v", err))
		return
	}
	s.svc.Close()
	s.svc = svc
	fmt.Fprintln(s.out, pterm.Info.Sprint("Configuration reloaded"))
}

func (s *session) run(cmd *cobra.Command, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "palette> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.applyPending()
		if strings.HasPrefix(line, ":") {
			quit, err := s.meta(cmd, line[1:])
			if err != nil {
				fmt.Fprintln(s.out, pterm.Error.Sprint(err))
			}
			if quit {
				return nil
			}
			continue
		}
		if err := s.handle(cmd, line); err != nil {
			fmt.Fprintln(s.out, pterm.Error.Sprint(err))
		}
	}
}

// handle runs one input and records whether it found anything.
func (s *session) handle(cmd *cobra.Command, line string) error {
	ctx := cmd.Context()
	res := s.svc.Handle(ctx, line, s.rctx)
	if err := printResult(s.out, res); err != nil {
		return err
	}

	switch {
	case res.Entity != nil, res.Search != nil && !res.Search.Empty():
		s.svc.RecordSuccess(ctx, line, s.rctx)
	case res.Message != "":
		s.svc.RecordFailure(ctx, line, s.rctx, res.Message)
	}
	return nil
}

func (s *session) meta(cmd *cobra.Command, line string) (bool, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return false, fmt.Errorf("could not parse %q: %w", line, err)
	}
	if len(words) == 0 {
		return false, nil
	}

	ctx := cmd.Context()
	switch words[0] {
	case "q", "quit", "exit":
		return true, nil
	case "suggest":
		return false, printSuggestions(s.out, s.svc.Suggest(ctx, strings.Join(words[1:], " "), s.rctx))
	case "search":
		if len(words) < 2 {
			return false, fmt.Errorf("usage: :search <term> [type...]")
		}
		types, err := parseTypes(words[2:])
		if err != nil {
			return false, err
		}
		return false, printSearch(s.out, s.svc.Search(ctx, words[1], types, s.rctx))
	case "resolve":
		if len(words) < 3 {
			return false, fmt.Errorf("usage: :resolve <type> <identifier>")
		}
		id := strings.Join(words[2:], " ")
		e, err := s.svc.Resolve(ctx, words[1], id, s.rctx)
		if err != nil {
			return false, err
		}
		if e == nil {
			fmt.Fprintln(s.out, pterm.Warning.Sprintf("No %s matching %q", words[1], id))
			return false, nil
		}
		printEntity(s.out, e)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command :%s", words[0])
	}
}
