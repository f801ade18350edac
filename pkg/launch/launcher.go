// Package launch is the tiny process-supervisor the composition root uses
// to run the HTTP server, the outbox relay and the scheduler side by side
// in one process. Grounded verbatim on the teacher's common.Launcher
// (_examples/LerianStudio-midaz/common/app.go) — same App interface,
// same option-functions, same goroutine-per-app-plus-WaitGroup shape.
package launch

import (
	"sync"

	"github.com/corebank-platform/core/platform/mlog"
)

// App is a long-running component the Launcher supervises.
type App interface {
	Run(launcher *Launcher) error
}

// Option configures a Launcher.
type Option func(l *Launcher)

// WithLogger attaches the logger every app's Run receives through the
// Launcher.
func WithLogger(logger mlog.Logger) Option {
	return func(l *Launcher) {
		l.Logger = logger
	}
}

// RunApp registers app under name.
func RunApp(name string, app App) Option {
	return func(l *Launcher) {
		l.add(name, app)
	}
}

// Launcher runs every registered App in its own goroutine and blocks until
// all of them return.
type Launcher struct {
	Logger mlog.Logger
	apps   map[string]App
	wg     *sync.WaitGroup
}

func (l *Launcher) add(name string, a App) {
	l.apps[name] = a
}

// Run starts every registered app and blocks until all of them finish.
func (l *Launcher) Run() {
	l.wg.Add(len(l.apps))

	l.Logger.Infof("starting %d app(s)", len(l.apps))

	for name, app := range l.apps {
		go func(name string, app App) {
			defer l.wg.Done()

			l.Logger.Infof("app %q starting", name)

			if err := app.Run(l); err != nil {
				l.Logger.Errorf("app %q exited with error: %v", name, err)
			}

			l.Logger.Infof("app %q finished", name)
		}(name, app)
	}

	l.wg.Wait()

	l.Logger.Info("launcher terminated")
}

// NewLauncher builds a Launcher configured with opts.
func NewLauncher(opts ...Option) *Launcher {
	l := &Launcher{
		apps: make(map[string]App),
		wg:   new(sync.WaitGroup),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}
