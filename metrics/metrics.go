// Package metrics holds the Prometheus collectors of the token store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the service reports.
type Metrics struct {
	TokensStored    prometheus.Counter
	DuplicateTokens prometheus.Counter
	Lookups         *prometheus.CounterVec
	Revocations     *prometheus.CounterVec
	SweptTokens     prometheus.Counter
	SweepFailures   prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TokensStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oauth2_tokens_stored_total",
			Help: "Total number of token records stored.",
		}),
		DuplicateTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oauth2_tokens_duplicate_total",
			Help: "Total number of inserts rejected because the fingerprint already existed.",
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth2_token_lookups_total",
			Help: "Token lookups by token type and result (hit, miss, error).",
		}, []string{"token_type", "result"}),
		Revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth2_token_revocations_total",
			Help: "Revocation requests by token type and result (revoked, unchanged, error).",
		}, []string{"token_type", "result"}),
		SweptTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oauth2_tokens_swept_total",
			Help: "Total number of expired or revoked records deleted by cleanup.",
		}),
		SweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oauth2_token_sweep_failures_total",
			Help: "Total number of cleanup runs that ended with an error.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.TokensStored, m.DuplicateTokens, m.Lookups, m.Revocations, m.SweptTokens, m.SweepFailures)
	}
	return m
}
