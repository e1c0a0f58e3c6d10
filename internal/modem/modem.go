// Package modem wraps the three external commands that drive the shared
// dial-up link: connect, disconnect, and is_connected. It owns the session
// Timer as a side effect of dialling and hanging up.
package modem

import (
	"context"
	"os/exec"

	"github.com/landialler/landiallerd/logger"
	"github.com/buildkite/shellwords"

	"github.com/landialler/landiallerd/internal/metrics"
	"github.com/landialler/landiallerd/internal/timer"
)

// Commands holds the three configured shell command strings. Each is parsed
// into argv with shellwords rather than handed to a shell, so a failing
// quote in the configuration file cannot smuggle in a second command.
type Commands struct {
	Connect     string
	Disconnect  string
	IsConnected string
}

// Modem is a single-owner wrapper over the physical (or simulated) dial-up
// link. There is exactly one Modem per process; it holds no knowledge of
// clients, only of the link itself and the Timer tracking the current
// session.
type Modem struct {
	commands Commands
	timer    *timer.Timer
	log      logger.Logger
}

// New constructs a Modem bound to the given commands. The Timer starts in
// the initial (not running, elapsed zero) state.
func New(commands Commands, log logger.Logger) *Modem {
	return &Modem{
		commands: commands,
		timer:    timer.New(),
		log:      log,
	}
}

// Timer returns the modem's session timer.
func (m *Modem) Timer() *timer.Timer {
	return m.timer
}

// TimeConnected returns the current session length in seconds, frozen once
// the session has stopped.
func (m *Modem) TimeConnected() int {
	return m.timer.ElapsedSeconds()
}

// Dial resets the session timer and runs the connect command. It reports
// whether the command exited zero. The timer is reset (not started) here;
// IsConnected is what starts it, matching the source behaviour where the
// timer only runs while the link is confirmed up.
func (m *Modem) Dial(ctx context.Context) bool {
	m.timer.Reset()
	ok := m.run(ctx, "connect", m.commands.Connect)
	metrics.RecordDial(ok)
	return ok
}

// HangUp stops the session timer and runs the disconnect command. It
// reports whether the command exited zero. HangUp never retries; a caller
// that wants convergence after failure relies on the sweeper's next tick.
func (m *Modem) HangUp(ctx context.Context) bool {
	m.timer.Stop()
	ok := m.run(ctx, "disconnect", m.commands.Disconnect)
	metrics.RecordHangUp(ok)
	return ok
}

// IsConnected runs the is_connected probe. On a zero exit it ensures the
// timer is running (a no-op if already running) and reports true;
// otherwise it reports false and leaves the timer untouched.
func (m *Modem) IsConnected(ctx context.Context) bool {
	ok := m.run(ctx, "is_connected", m.commands.IsConnected)
	if ok {
		m.timer.Start()
	}
	metrics.RecordProbe(ok)
	metrics.SetConnectedSeconds(m.timer.ElapsedSeconds())
	return ok
}

// run splits cmdline with shellwords and executes it, returning true iff
// the exit status is zero. Only the exit code is observed: stdout/stderr
// are discarded unless debug logging is enabled, and even then they are
// never allowed to block the command.
func (m *Modem) run(ctx context.Context, label, cmdline string) bool {
	argv, err := shellwords.Split(cmdline)
	if err != nil {
		m.log.Error("[Modem] could not parse %s command %q: %v", label, cmdline, err)
		return false
	}
	if len(argv) == 0 {
		m.log.Error("[Modem] %s command is empty", label)
		return false
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if m.log.Level() == logger.DEBUG {
		out, err := cmd.CombinedOutput()
		m.log.Debug("[Modem] %s command %q output: %s", label, cmdline, out)
		if err != nil {
			m.log.Debug("[Modem] %s command %q failed: %v", label, cmdline, err)
			return false
		}
		return true
	}

	if err := cmd.Run(); err != nil {
		m.log.Warn("[Modem] %s command failed: %v", label, err)
		return false
	}
	return true
}
