package named_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gocrud/beans/config"
	"github.com/gocrud/beans/starter/internal/named"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conn struct {
	name   string
	closed bool
}

type connOptions struct {
	Name    string        `validate:"required"`
	Addr    string        `validate:"required"`
	Retries int           `validate:"gte=0"`
	Timeout time.Duration `validate:"gt=0"`
}

func defaults(name string) *connOptions {
	return &connOptions{Name: name, Addr: "localhost:1", Timeout: time.Second}
}

func TestFactory(t *testing.T) {
	var closed []string
	f := named.NewFactory("conn", func(_ context.Context, c *conn) error {
		c.closed = true
		closed = append(closed, c.name)
		if c.name == "bad" {
			return errors.New("boom")
		}
		return nil
	})

	a, b := &conn{name: "a"}, &conn{name: "bad"}
	require.NoError(t, f.Put("a", a))
	require.NoError(t, f.Put("bad", b))
	assert.ErrorContains(t, f.Put("a", &conn{}), "conn 'a' already registered")
	assert.Equal(t, []string{"a", "bad"}, f.Names())

	got, err := f.Get("a")
	require.NoError(t, err)
	assert.Same(t, a, got)
	_, err = f.Get("missing")
	assert.ErrorContains(t, err, "conn 'missing' not found")

	var visited []string
	f.Each(func(name string, _ *conn) { visited = append(visited, name) })
	assert.Equal(t, []string{"a", "bad"}, visited)

	err = f.Close(context.Background())
	assert.ErrorContains(t, err, "failed to close conn 'bad': boom")
	assert.Equal(t, []string{"a", "bad"}, closed)
	assert.True(t, a.closed)
	assert.Empty(t, f.Names())
}

func TestBuilder(t *testing.T) {
	b := named.NewBuilder("conn", defaults)
	b.Add("primary", nil)
	b.Add("replica", func(o *connOptions) { o.Retries = 3 })

	configs, err := b.Configs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "primary", configs[0].Name)
	assert.Equal(t, 3, configs[1].Retries)

	b.Add("primary", nil)
	b.Add("broken", func(o *connOptions) {
		o.Addr = ""
		o.Retries = -1
		o.Timeout = 0
	})
	_, err = b.Configs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn 'primary' already configured")
	assert.Contains(t, err.Error(), "Addr is required; Retries must be at least 0; Timeout must be greater than 0")
}

type entry struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

func TestFromConfig(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"conns": map[string]any{
				"zeta":  map[string]any{"addr": "z:1"},
				"alpha": map[string]any{"addr": "a:1", "timeout": "3s"},
			},
			"scalar": "value",
		}).
		Build()
	require.NoError(t, err)

	b := named.NewBuilder("conn", defaults)
	b.Config = cfg
	named.FromConfig(b, "conns", func(name string, e entry) error {
		var parseErr error
		b.Add(name, func(o *connOptions) {
			o.Addr = e.Addr
			parseErr = named.ParseDuration(e.Timeout, &o.Timeout)
		})
		return parseErr
	})
	named.FromConfig(b, "missing", func(string, entry) error {
		t.Fatal("missing section must not produce entries")
		return nil
	})

	configs, err := b.Configs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "alpha", configs[0].Name)
	assert.Equal(t, 3*time.Second, configs[0].Timeout)
	assert.Equal(t, "zeta", configs[1].Name)
	assert.Equal(t, time.Second, configs[1].Timeout)

	named.FromConfig(b, "scalar", func(string, entry) error { return nil })
	_, err = b.Configs()
	assert.ErrorContains(t, err, "section 'scalar'")

	noConfig := named.NewBuilder("conn", defaults)
	named.FromConfig(noConfig, "conns", func(string, entry) error { return nil })
	_, err = noConfig.Configs()
	assert.ErrorContains(t, err, "configuration is not available")
}

func TestParseDuration(t *testing.T) {
	d := 5 * time.Second
	require.NoError(t, named.ParseDuration("", &d))
	assert.Equal(t, 5*time.Second, d)
	require.NoError(t, named.ParseDuration("150ms", &d))
	assert.Equal(t, 150*time.Millisecond, d)
	assert.Error(t, named.ParseDuration("later", &d))
}
