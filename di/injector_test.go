package di_test

import (
	"testing"

	"github.com/gocrud/beans/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_RequiredUnsatisfied(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, di.Register[*B](f, "b", di.WithField("A", di.Auto())))

	_, err := f.GetByName("b")
	assert.ErrorIs(t, err, di.ErrUnsatisfied)
	assert.Equal(t, "unsatisfied", di.KindOf(err))
	assert.NotContains(t, f.Instances(), "b")
}

func TestField_FailedInjectionKeepsSharedIdentity(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, di.Register[*Order](f, "order",
		di.WithField("Customer", di.Auto()),
		di.WithField("Clock", di.Ref("clock"))))
	require.NoError(t, di.Register[*Customer](f, "customer", di.WithField("Order", di.Auto())))

	_, err := f.GetByName("order")
	require.ErrorIs(t, err, di.ErrUnsatisfied)
	assert.NotContains(t, f.Instances(), "order")
	assert.Contains(t, f.Instances(), "customer")

	// 依赖补齐后重新注入同一个实例
	require.NoError(t, f.RegisterInstance("clock", &Clock{Now: "noon"}))
	order, err := di.ResolveNamed[*Order](f, "order")
	require.NoError(t, err)
	customer, err := di.ResolveNamed[*Customer](f, "customer")
	require.NoError(t, err)

	assert.Same(t, order, customer.Order)
	assert.Same(t, customer, order.Customer)
	assert.Equal(t, "noon", order.Clock.Now)
	assert.Contains(t, f.Instances(), "order")

	again, err := di.ResolveNamed[*Order](f, "order")
	require.NoError(t, err)
	assert.Same(t, order, again)
}

func TestField_FailedInjectionIsNotReturned(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, di.Register[*B](f, "b", di.WithField("A", di.Auto())))

	for range 2 {
		_, err := f.GetByName("b")
		assert.ErrorIs(t, err, di.ErrUnsatisfied)
	}
	_, err := di.Resolve[*B](f)
	assert.ErrorIs(t, err, di.ErrUnsatisfied)
}

func TestField_OptionalLeftUnset(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, di.Register[*B](f, "b", di.WithField("A", di.Auto().Optional())))

	b, err := di.ResolveNamed[*B](f, "b")
	require.NoError(t, err)
	assert.Nil(t, b.A)
}

func TestField_AssignmentFailureIsFatalEvenWhenOptional(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, f.RegisterInstance("clock", &Clock{}))
	// 按名称命中的组件类型与字段不兼容
	require.NoError(t, di.Register[*B](f, "b", di.WithField("A", di.Ref("clock").Optional())))

	_, err := f.GetByName("b")
	assert.ErrorIs(t, err, di.ErrFieldInjection)
	assert.Contains(t, err.Error(), "field A")
}

func TestField_Unexported(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, f.RegisterInstance("repo", &memRepo{prefix: "r-"}))
	require.NoError(t, f.RegisterInstance("cache", &memRepo{prefix: "c-"}))
	require.NoError(t, f.Register(di.Describe[*Service]("svc")))

	svc, err := di.ResolveNamed[*Service](f, "svc")
	require.NoError(t, err)
	assert.Equal(t, "r-1", svc.Repo.Find(1))
	assert.Equal(t, "c-1", svc.Cache().Find(1))
}

func TestField_SharedCycleResolvesToPartialInstance(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, f.Register(di.Describe[*Ping]("ping")))
	require.NoError(t, f.Register(di.Describe[*Pong]("pong")))

	ping, err := di.ResolveNamed[*Ping](f, "ping")
	require.NoError(t, err)
	require.NotNil(t, ping.Pong)
	assert.Same(t, ping, ping.Pong.Ping)

	pong, err := di.ResolveNamed[*Pong](f, "pong")
	require.NoError(t, err)
	assert.Same(t, pong, ping.Pong)
}

func TestMethod_OptionalFailureAbsorbed(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, di.Register[*Widget](f, "widget",
		di.WithMethod("Explode", false),
		di.WithMethod("Panic", false),
		di.WithMethod("SetClock", false),
		di.WithMethod("Mark", false),
	))

	w, err := di.ResolveNamed[*Widget](f, "widget")
	require.NoError(t, err)
	assert.Equal(t, []string{"marked"}, w.Marks())
	assert.Empty(t, w.Name)
}

func TestMethod_RequiredFailure(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, di.Register[*Widget](f, "widget", di.WithMethod("Explode", true)))

	_, err := f.GetByName("widget")
	assert.ErrorIs(t, err, di.ErrMethodInjection)
	assert.Contains(t, err.Error(), "boom")

	f = di.NewFactory()
	require.NoError(t, di.Register[*Widget](f, "widget", di.WithMethod("SetClock", true)))

	_, err = f.GetByName("widget")
	assert.ErrorIs(t, err, di.ErrUnsatisfied)
}

func TestMethod_ResolvesArguments(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, f.RegisterInstance("clock", &Clock{Now: "noon"}))
	require.NoError(t, di.Register[*Widget](f, "widget",
		di.WithMethod("SetClock", true, di.Ref("clock")),
		di.WithMethod("Mark", true),
	))

	w, err := di.ResolveNamed[*Widget](f, "widget")
	require.NoError(t, err)
	assert.Equal(t, "noon", w.Name)
	assert.Equal(t, []string{"marked"}, w.Marks())
}

func TestLazy_ReinjectsOnLookup(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, di.Register[*B](f, "b", di.WithLazy(), di.WithField("A", di.Auto().Optional())))

	b, err := di.ResolveNamed[*B](f, "b")
	require.NoError(t, err)
	assert.Nil(t, b.A)

	require.NoError(t, f.RegisterInstance("a", &A{ID: 9}))

	again, err := di.ResolveNamed[*B](f, "b")
	require.NoError(t, err)
	assert.Same(t, b, again)
	require.NotNil(t, again.A)
	assert.Equal(t, 9, again.A.ID)
}

func TestNonLazy_DoesNotReinject(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, di.Register[*B](f, "b", di.WithField("A", di.Auto().Optional())))

	_, err := f.GetByName("b")
	require.NoError(t, err)
	require.NoError(t, f.RegisterInstance("a", &A{ID: 9}))

	b, err := di.ResolveNamed[*B](f, "b")
	require.NoError(t, err)
	assert.Nil(t, b.A)
}
