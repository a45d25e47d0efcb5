package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Engine struct{}

type Car struct {
	Engine *Engine
}

func TestCollector_ObservesFactory(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector("beans", registry)
	require.NoError(t, err)

	f := di.NewFactory(di.WithObserver(collector))
	require.NoError(t, di.Register[*Engine](f, "engine"))
	require.NoError(t, di.Register[*Engine](f, "spare", di.WithUnshared()))
	require.NoError(t, di.Register[*Car](f, "car", di.WithConstructor(func() (*Car, error) {
		return nil, errors.New("no wheels")
	})))

	_, err = f.GetByName("engine")
	require.NoError(t, err)
	spare, err := f.GetByName("spare")
	require.NoError(t, err)
	_, err = di.Materialize(spare)
	require.NoError(t, err)
	_, err = f.GetByName("car")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Created.WithLabelValues("shared")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Created.WithLabelValues("unshared")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Failures.WithLabelValues("instantiation")))
	assert.EqualValues(t, 2, sampleCount(t, registry, "beans_component_construction_seconds"))
}

func sampleCount(t *testing.T, g prometheus.Gatherer, name string) uint64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := metrics.NewCollector("beans", registry)
	require.NoError(t, err)

	_, err = metrics.NewCollector("beans", registry)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector("beans", registry)
	require.NoError(t, err)
	collector.OnFailed("x", &di.BeanError{Kind: di.ErrCircular, Name: "x", Ref: "y"})

	rec := httptest.NewRecorder()
	metrics.Handler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `beans_component_failures_total{kind="circular"} 1`))
}
