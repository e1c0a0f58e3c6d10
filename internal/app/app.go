// Package app wires the Timer, Modem, ModemProxy, Sweeper and RPC dispatch
// together into a server that runs until told to stop, mirroring the
// start/stop lifecycle jobapi.Server uses for its own HTTP listener.
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/landialler/landiallerd/logger"
	"github.com/buildkite/roko"

	"github.com/landialler/landiallerd/internal/api"
	"github.com/landialler/landiallerd/internal/config"
	"github.com/landialler/landiallerd/internal/modem"
	"github.com/landialler/landiallerd/internal/proxy"
	"github.com/landialler/landiallerd/internal/rpc"
	"github.com/landialler/landiallerd/internal/sweeper"
	"github.com/landialler/landiallerd/lockfile"
	"github.com/landialler/landiallerd/status"
)

// Options is everything App needs besides the parsed landiallerd.conf: the
// logger, the lock file path (defaulting to /tmp/landiallerd.lock when
// empty), and the sweep interval (defaulting to sweeper.DefaultInterval
// when zero).
type Options struct {
	Log           logger.Logger
	LockPath      string
	SweepInterval time.Duration
}

// App owns the long-lived components and their lifecycle.
type App struct {
	log      logger.Logger
	lock     *lockfile.LockFile
	listener net.Listener
	server   *http.Server
	sweeper  *sweeper.Sweeper

	sweeperCancel context.CancelFunc
	sweeperDone   chan struct{}

	statusDone func()
}

// New reads the commands and port from cfg and assembles the App. The
// listener is opened (with address reuse) but Serve is not yet called.
func New(cfg *config.Config, opts Options) (*App, error) {
	commands, err := loadCommands(cfg)
	if err != nil {
		return nil, err
	}
	port, err := loadPort(cfg)
	if err != nil {
		return nil, err
	}

	m := modem.New(commands, opts.Log)
	p := proxy.New(m)
	a := api.New(p)

	_, setState, done := status.AddSimpleItem(context.Background(), "landiallerd.sweeper")

	sw := sweeper.New(p, opts.SweepInterval, opts.Log, setState)

	router := rpc.NewRouter(a, opts.Log)

	lc := net.ListenConfig{Control: reuseAddrControl}
	ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		done()
		return nil, fmt.Errorf("listening on port %d: %w", port, err)
	}

	lockPath := opts.LockPath
	if lockPath == "" {
		lockPath = defaultLockPath()
	}
	lf, err := lockfile.New(lockPath)
	if err != nil {
		ln.Close()
		done()
		return nil, fmt.Errorf("creating lock file %s: %w", lockPath, err)
	}

	return &App{
		log:         opts.Log,
		lock:        lf,
		listener:    ln,
		server:      &http.Server{Handler: router},
		sweeper:     sw,
		statusDone:  done,
	}, nil
}

// AcquireLock takes the single-instance lock, retrying with a bounded,
// jittered backoff to ride out a fast restart where the previous process's
// lock has not yet been released.
func (a *App) AcquireLock(ctx context.Context) error {
	return roko.NewRetrier(
		roko.WithMaxAttempts(5),
		roko.WithStrategy(roko.Constant(1*time.Second)),
		roko.WithJitter(),
	).DoWithContext(ctx, func(r *roko.Retrier) error {
		if err := a.lock.TryLock(); err != nil {
			a.log.Warn("[App] could not acquire instance lock (attempt %d): %v", r.AttemptCount(), err)
			return err
		}
		return nil
	})
}

// Serve starts the sweeper and blocks serving RPC requests until the
// listener is closed by Stop.
func (a *App) Serve() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.sweeperCancel = cancel
	a.sweeperDone = make(chan struct{})

	go func() {
		defer close(a.sweeperDone)
		a.sweeper.Run(ctx)
	}()

	a.log.Info("[App] serving on %s", a.listener.Addr())
	err := a.server.Serve(a.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop cancels the sweeper and gracefully shuts down the HTTP server,
// allowing in-flight requests to finish, then releases the instance lock.
func (a *App) Stop(ctx context.Context) error {
	if a.sweeperCancel != nil {
		a.sweeperCancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	err := a.server.Shutdown(shutdownCtx)

	if a.sweeperDone != nil {
		<-a.sweeperDone
	}
	if a.statusDone != nil {
		a.statusDone()
	}
	if unlockErr := a.lock.Unlock(); unlockErr != nil {
		a.log.Warn("[App] could not release instance lock: %v", unlockErr)
	}

	return err
}

func loadCommands(cfg *config.Config) (modem.Commands, error) {
	connect, ok := cfg.Get("commands", "connect")
	if !ok {
		return modem.Commands{}, fmt.Errorf("missing commands.connect in config")
	}
	disconnect, ok := cfg.Get("commands", "disconnect")
	if !ok {
		return modem.Commands{}, fmt.Errorf("missing commands.disconnect in config")
	}
	isConnected, ok := cfg.Get("commands", "is_connected")
	if !ok {
		return modem.Commands{}, fmt.Errorf("missing commands.is_connected in config")
	}
	return modem.Commands{Connect: connect, Disconnect: disconnect, IsConnected: isConnected}, nil
}

func loadPort(cfg *config.Config) (int, error) {
	portStr, ok := cfg.Get("general", "port")
	if !ok {
		return config.DefaultPort, nil
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return 0, fmt.Errorf("unparseable port %q: %w", portStr, err)
	}
	return port, nil
}

func defaultLockPath() string {
	return "/tmp/landiallerd.lock"
}
