package dashboard

import (
	"context"
	"errors"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillpath/internal/engine"
	"github.com/abhisek/skillpath/internal/syncbus"
)

// StatusSource loads the status for a role. *engine.Engine satisfies it.
type StatusSource interface {
	Status(ctx context.Context, role string) (engine.Status, error)
}

// Options configures Run.
type Options struct {
	Source  StatusSource
	Bus     *syncbus.Bus
	Watcher *syncbus.Watcher // optional; picks up writes from other processes
	Roles   []string
	Role    string
	Logger  *slog.Logger

	// ProgramOptions are passed through to tea.NewProgram.
	ProgramOptions []tea.ProgramOption
}

// Run shows the dashboard until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.Source == nil || opts.Bus == nil {
		return errors.New("dashboard: source and bus are required")
	}
	if len(opts.Roles) == 0 {
		return errors.New("dashboard: no roles to show")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var program *tea.Program
	var model Model
	refresher := syncbus.NewRefresher(func(ctx context.Context) error {
		role := model.sel.current()
		st, err := opts.Source.Status(ctx, role)
		program.Send(Loaded(role, st, err))
		return err
	}, logger)

	model = New(opts.Roles, opts.Role, refresher)
	program = tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts.ProgramOptions...)...)

	sub := opts.Bus.Subscribe(0)
	defer opts.Bus.Unsubscribe(sub)
	refresher.Attach(ctx, sub)

	if opts.Watcher != nil {
		if err := opts.Watcher.Prime(ctx); err != nil {
			logger.Warn("sync watcher prime failed", "error", err)
		}
		go func() {
			if err := opts.Watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("sync watcher stopped", "error", err)
			}
		}()
	}
	go func() { _ = refresher.Run(ctx) }()
	refresher.Notify()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
