package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TokensStored.Inc()
	m.Lookups.WithLabelValues("access_token", "hit").Inc()
	m.SweptTokens.Add(4)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.TokensStored))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.SweptTokens))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Lookups))
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestNew_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() { New(nil).DuplicateTokens.Inc() })
}
