package main

import (
	"github.com/rs/zerolog"

	"pgpartition/internal/config"
	"pgpartition/internal/metrics"
	"pgpartition/internal/metrics/datadog"
	"pgpartition/internal/metrics/prompush"
)

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it at exit. Any setup failure leaves the nop backend
// in place.
func setupMetrics(m config.Metrics, log zerolog.Logger) (flush func()) {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "pushgateway":
		if m.PushgatewayURL == "" {
			log.Warn().Msg("metrics: pushgateway backend without url; metrics disabled")
			return func() {}
		}
		job := m.Job
		if job == "" {
			job = "pgpartition"
		}
		b, err = prompush.NewBackend(job, m.PushgatewayURL)

	case "datadog":
		if m.DatadogAddr == "" {
			log.Warn().Msg("metrics: datadog backend without address; metrics disabled")
			return func() {}
		}
		b, err = datadog.NewBackend(datadog.Config{Addr: m.DatadogAddr, GlobalTags: m.DatadogTags})

	case "", "none":
		// metrics disabled; nop backend remains
		return func() {}

	default:
		log.Warn().Str("backend", m.Backend).Msg("metrics: unknown backend; metrics disabled")
		return func() {}
	}

	if err != nil {
		log.Warn().Err(err).Str("backend", m.Backend).Msg("metrics: init failed; using nop")
		return func() {}
	}
	log.Debug().Str("backend", m.Backend).Msg("metrics: enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics: flush error")
		}
	}
}
