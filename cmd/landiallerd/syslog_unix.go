//go:build !windows

package main

import (
	"fmt"
	"log/syslog"
	"os"

	"github.com/landialler/landiallerd/logger"
)

func newSyslogPrinter() logger.Printer {
	w, err := syslog.New(syslog.LOG_NOTICE|syslog.LOG_DAEMON, "landiallerd")
	if err != nil {
		fmt.Fprintf(os.Stderr, "landiallerd: could not connect to syslog: %v\n", err)
		os.Exit(1)
	}
	p := logger.NewTextPrinter(w)
	p.Colors = false
	return p
}
