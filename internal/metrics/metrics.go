// Package metrics exposes process-local Prometheus counters and gauges for
// the link's dial/hang-up activity and client accounting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "landiallerd"

var (
	DialTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "modem",
		Name:      "dial_total",
		Help:      "Count of dial commands executed",
	})
	DialErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "modem",
		Name:      "dial_errors_total",
		Help:      "Count of dial commands that exited non-zero",
	})
	HangUpTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "modem",
		Name:      "hangup_total",
		Help:      "Count of hang-up commands executed",
	})
	HangUpErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "modem",
		Name:      "hangup_errors_total",
		Help:      "Count of hang-up commands that exited non-zero",
	})
	ProbeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "modem",
		Name:      "probe_total",
		Help:      "Count of is_connected probes executed",
	})

	ClientsRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "clients",
		Name:      "registered",
		Help:      "Current number of clients registered with the link",
	})
	ModemConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "modem",
		Name:      "connected",
		Help:      "1 if the modem currently reports connected, 0 otherwise",
	})
	ConnectedSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "modem",
		Name:      "connected_seconds",
		Help:      "Length of the current (or most recently completed) session",
	})
)

// RecordDial observes the outcome of a dial command.
func RecordDial(ok bool) {
	DialTotal.Inc()
	if !ok {
		DialErrorsTotal.Inc()
	}
}

// RecordHangUp observes the outcome of a hang-up command.
func RecordHangUp(ok bool) {
	HangUpTotal.Inc()
	if !ok {
		HangUpErrorsTotal.Inc()
	}
}

// RecordProbe observes an is_connected probe and updates the connected
// gauge.
func RecordProbe(connected bool) {
	ProbeTotal.Inc()
	if connected {
		ModemConnected.Set(1)
	} else {
		ModemConnected.Set(0)
	}
}

// SetClientsRegistered updates the live client-count gauge.
func SetClientsRegistered(n int) {
	ClientsRegistered.Set(float64(n))
}

// SetConnectedSeconds updates the session-length gauge.
func SetConnectedSeconds(seconds int) {
	ConnectedSeconds.Set(float64(seconds))
}
