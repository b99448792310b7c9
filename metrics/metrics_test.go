package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewRegistryMetrics("test", reg)
	require.NoError(t, err)

	m.ObserveOperation("mint", "ok")
	m.ObserveOperation("mint", "ok")
	m.ObserveOperation("mint", "not_admin")
	m.SetNextTokenID(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("mint", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("mint", "not_admin")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.nextTokenID))

	// Registering twice on the same registry fails
	_, err = NewRegistryMetrics("test", reg)
	assert.Error(t, err)
}

func TestRegistryMetrics_NilSafe(t *testing.T) {
	var m *RegistryMetrics
	m.ObserveOperation("mint", "ok")
	m.SetNextTokenID(1)
}

func TestNew(t *testing.T) {
	srv, err := New("test", "127.0.0.1:0")
	require.NoError(t, err)
	require.NotNil(t, srv.Registry)

	srv.Registry.ObserveOperation("initialize", "ok")
	families, err := srv.Gatherer().Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "test_operations_total" {
			found = true
		}
	}
	assert.True(t, found)
}
