//go:build windows

package main

import (
	"fmt"
	"os"

	"github.com/landialler/landiallerd/logger"
)

func newSyslogPrinter() logger.Printer {
	fmt.Fprintln(os.Stderr, "landiallerd: -syslog is not supported on windows")
	os.Exit(1)
	return nil
}
