// Command landiallerd serves the LANdialler RPC surface over a shared
// dial-up link, wiring logging, config and signals around the core in
// internal/app. It always runs in the foreground and never forks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/landialler/landiallerd/logger"

	"github.com/landialler/landiallerd/internal/app"
	"github.com/landialler/landiallerd/internal/config"
	"github.com/landialler/landiallerd/signalwatcher"
	"github.com/landialler/landiallerd/version"
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "landiallerd"
	cliApp.Usage = "share a dial-up link with LAN workstations over RPC"
	cliApp.Version = version.Version()

	cliApp.Flags = []cli.Flag{
		cli.BoolFlag{Name: "foreground, f", Usage: "run in the foreground (accepted for compatibility; landiallerd never daemonises)"},
		cli.StringFlag{Name: "log-file, l", Usage: "log to the given file instead of stderr"},
		cli.BoolFlag{Name: "syslog, s", Usage: "log to syslog instead of stderr"},
		cli.BoolFlag{Name: "debug, d", Usage: "verbose logging"},
		cli.StringFlag{Name: "config", Usage: "path to landiallerd.conf (overrides the default search path)"},
		cli.DurationFlag{Name: "sweep-interval", Value: 0, Usage: "auto-disconnect sweep interval (default 5s)"},
	}

	cliApp.Action = run

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "landiallerd: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := newLogger(c)

	cfg, err := loadConfig(c)
	if err != nil {
		log.Fatal("Terminating - error reading config file: %v", err)
		return err
	}

	a, err := app.New(cfg, app.Options{
		Log:           log,
		SweepInterval: c.Duration("sweep-interval"),
	})
	if err != nil {
		log.Fatal("error starting up: %v", err)
		return err
	}

	if err := a.AcquireLock(context.Background()); err != nil {
		log.Fatal("could not acquire instance lock: %v", err)
		return err
	}

	signalwatcher.Watch(func(sig signalwatcher.Signal) {
		log.Notice("received signal %s, shutting down", sig)
		if err := a.Stop(context.Background()); err != nil {
			log.Error("error during shutdown: %v", err)
		}
		os.Exit(0)
	})

	return a.Serve()
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if p := c.String("config"); p != "" {
		return config.Load(p)
	}
	return config.Find(config.DefaultPaths)
}

func newLogger(c *cli.Context) logger.Logger {
	var printer logger.Printer
	switch {
	case c.String("log-file") != "":
		f, err := os.OpenFile(c.String("log-file"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "landiallerd: could not open log file: %v\n", err)
			os.Exit(1)
		}
		printer = logger.NewTextPrinter(f)
	case c.Bool("syslog"):
		printer = newSyslogPrinter()
	default:
		printer = logger.NewTextPrinter(os.Stderr)
	}

	log := logger.NewConsoleLogger(printer, os.Exit)
	if c.Bool("debug") {
		log.SetLevel(logger.DEBUG)
	} else {
		log.SetLevel(logger.INFO)
	}
	return log
}
