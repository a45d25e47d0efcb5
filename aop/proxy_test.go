package aop_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gocrud/beans/aop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Greeter interface {
	Greet(name string) string
	Fail() error
}

type greeter struct {
	prefix string
	calls  int
}

func (g *greeter) Greet(name string) string {
	g.calls++
	return g.prefix + name
}

func (g *greeter) Fail() error { return errors.New("boom") }

func (g *greeter) Panic() { panic("kaboom") }

func (g *greeter) Sum(base int, more ...int) int {
	for _, m := range more {
		base += m
	}
	return base
}

var greeterType = reflect.TypeOf((*Greeter)(nil)).Elem()

func TestProxy_InvokeWithoutAdvice(t *testing.T) {
	target := &greeter{prefix: "hello "}
	p, err := aop.NewProxy(target, nil, greeterType)
	require.NoError(t, err)

	results, err := p.Invoke("Greet", "bob")
	require.NoError(t, err)
	assert.Equal(t, []any{"hello bob"}, results)
	assert.Equal(t, 1, target.calls)
	assert.Same(t, target, p.Target())
}

func TestProxy_RestrictedToInterfaceMethods(t *testing.T) {
	p, err := aop.NewProxy(&greeter{}, nil, greeterType)
	require.NoError(t, err)

	assert.False(t, p.HasMethod("Sum"))
	_, err = p.Invoke("Sum", 1)
	assert.ErrorIs(t, err, aop.ErrNoSuchMethod)
}

func TestProxy_AllExportedMethodsWithoutInterfaces(t *testing.T) {
	p, err := aop.NewProxy(&greeter{}, nil)
	require.NoError(t, err)

	results, err := p.Invoke("Sum", 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{6}, results)
}

func TestProxy_RejectsUnimplementedInterface(t *testing.T) {
	type other interface{ Nope() }
	_, err := aop.NewProxy(&greeter{}, nil, reflect.TypeOf((*other)(nil)).Elem())
	assert.ErrorIs(t, err, aop.ErrNotImplemented)
}

func TestProxy_AdviceOrder(t *testing.T) {
	var trace []string
	around := aop.AroundFunc(func(inv *aop.Invocation, proceed func() ([]any, error)) ([]any, error) {
		trace = append(trace, "around-in")
		res, err := proceed()
		trace = append(trace, "around-out")
		return res, err
	})
	before := aop.BeforeFunc(func(inv *aop.Invocation) error {
		trace = append(trace, "before:"+inv.Method)
		return nil
	})
	after := aop.AfterReturningFunc(func(inv *aop.Invocation, results []any) error {
		trace = append(trace, "after:"+results[0].(string))
		return nil
	})

	p, err := aop.NewProxy(&greeter{prefix: "hi "}, []aop.Advisor{
		aop.MatchAll(around),
		aop.NewNameMatchAdvisor(before, "Greet"),
		aop.MustRegexpAdvisor("^Gr", after),
	}, greeterType)
	require.NoError(t, err)

	_, err = p.Invoke("Greet", "amy")
	require.NoError(t, err)
	assert.Equal(t, []string{"around-in", "before:Greet", "after:hi amy", "around-out"}, trace)
}

func TestProxy_BeforeCanRewriteArgumentsAndAbort(t *testing.T) {
	rewrite := aop.BeforeFunc(func(inv *aop.Invocation) error {
		inv.Args[0] = strings.ToUpper(inv.Args[0].(string))
		return nil
	})
	p, err := aop.NewProxy(&greeter{}, []aop.Advisor{aop.MatchAll(rewrite)}, greeterType)
	require.NoError(t, err)

	results, err := p.Invoke("Greet", "amy")
	require.NoError(t, err)
	assert.Equal(t, "AMY", results[0])

	denied := errors.New("denied")
	target := &greeter{}
	p, err = aop.NewProxy(target, []aop.Advisor{aop.MatchAll(aop.BeforeFunc(func(*aop.Invocation) error {
		return denied
	}))}, greeterType)
	require.NoError(t, err)

	_, err = p.Invoke("Greet", "amy")
	assert.ErrorIs(t, err, denied)
	assert.Zero(t, target.calls)
}

func TestProxy_ThrowsAdvice(t *testing.T) {
	var caught []error
	throws := aop.ThrowsFunc(func(inv *aop.Invocation, err error) {
		caught = append(caught, err)
	})

	p, err := aop.NewProxy(&greeter{}, []aop.Advisor{aop.MatchAll(throws)})
	require.NoError(t, err)

	_, err = p.Invoke("Fail")
	assert.EqualError(t, err, "boom")

	_, err = p.Invoke("Panic")
	assert.ErrorIs(t, err, aop.ErrTargetPanic)
	assert.Len(t, caught, 2)
}

func TestProxy_AroundCanShortCircuit(t *testing.T) {
	target := &greeter{}
	cached := aop.AroundFunc(func(inv *aop.Invocation, proceed func() ([]any, error)) ([]any, error) {
		return []any{"cached"}, nil
	})
	p, err := aop.NewProxy(target, []aop.Advisor{aop.MatchAll(cached)}, greeterType)
	require.NoError(t, err)

	results, err := p.Invoke("Greet", "x")
	require.NoError(t, err)
	assert.Equal(t, []any{"cached"}, results)
	assert.Zero(t, target.calls)
}

func TestProxy_UniversalMethodsBypassAdvice(t *testing.T) {
	called := false
	spy := aop.BeforeFunc(func(*aop.Invocation) error {
		called = true
		return nil
	})
	target := &greeter{}
	p, err := aop.NewProxy(target, []aop.Advisor{aop.MatchAll(spy)}, greeterType)
	require.NoError(t, err)

	eq, err := p.Invoke("Equals", target)
	require.NoError(t, err)
	assert.Equal(t, true, eq[0])

	eq, err = p.Invoke("Equals", &greeter{})
	require.NoError(t, err)
	assert.Equal(t, false, eq[0])

	other, err := aop.NewProxy(target, nil)
	require.NoError(t, err)
	eq, err = p.Invoke("Equals", other)
	require.NoError(t, err)
	assert.Equal(t, true, eq[0])

	h1, err := p.Invoke("HashCode")
	require.NoError(t, err)
	h2, err := other.Invoke("HashCode")
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	s, err := p.Invoke("String")
	require.NoError(t, err)
	assert.Contains(t, s[0], "greeter")

	assert.False(t, called)
}

func TestProxy_ArgumentMismatch(t *testing.T) {
	p, err := aop.NewProxy(&greeter{}, nil, greeterType)
	require.NoError(t, err)

	_, err = p.Invoke("Greet")
	assert.ErrorIs(t, err, aop.ErrArgumentMismatch)

	_, err = p.Invoke("Greet", struct{}{})
	assert.ErrorIs(t, err, aop.ErrArgumentMismatch)
}

func TestNewRegexpAdvisor_Invalid(t *testing.T) {
	_, err := aop.NewRegexpAdvisor("(", aop.BeforeFunc(func(*aop.Invocation) error { return nil }))
	assert.Error(t, err)

	_, err = aop.NewRegexpAdvisor(".*", "not advice")
	assert.ErrorIs(t, err, aop.ErrInvalidAdvice)
}
