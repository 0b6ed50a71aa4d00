package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"sctutils/internal/config"
	"sctutils/internal/console"
	"sctutils/internal/fsl"
	"sctutils/internal/fsutil"
	"sctutils/internal/shell"
	"sctutils/internal/storage"
)

const version = "v0.1.0-dev"

type toolChecker interface {
	GetToolStatus(ctx context.Context) map[string]fsl.ToolStatus
	Required() []string
}

type watchFunc func(ctx context.Context, dirs []string, log *slog.Logger, fn func(fsutil.NiftiEvent)) error

func defaultWatch(ctx context.Context, dirs []string, log *slog.Logger, fn func(fsutil.NiftiEvent)) error {
	w, err := fsutil.NewWatcher(dirs, log)
	if err != nil {
		return err
	}
	return w.Run(ctx, fn)
}

// Root holds the shared state behind every subcommand.
type Root struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *storage.Store
	out     io.Writer
	printer *console.Printer
	runner  *shell.Runner
	toolkit *fsl.Toolkit
	tools   toolChecker
	watchFn watchFunc
}

// NewRoot wires the runner, toolkit and printer from cfg. store may be nil.
func NewRoot(cfg *config.Config, logger *slog.Logger, store *storage.Store, out io.Writer) *Root {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Root{
		cfg:     cfg,
		log:     logger,
		store:   store,
		out:     out,
		watchFn: defaultWatch,
	}
	r.rebuild()
	return r
}

// rebuild recreates the components that depend on mutable settings.
func (r *Root) rebuild() {
	r.printer = &console.Printer{Out: r.out, Verbose: r.cfg.Console.Verbose, Color: r.cfg.Console.Color}

	r.runner = shell.New(r.cfg.FSL, r.printer, r.log)
	if r.store != nil {
		r.runner.Recorder = r.store
	}

	r.toolkit = fsl.NewToolkit(r.runner, r.cfg.FSL, r.printer, r.log)
	if r.store != nil {
		r.toolkit.Recorder = r.store
	}

	if r.tools == nil {
		r.tools = fsl.NewToolManager(r.cfg.FSL)
	}
}
