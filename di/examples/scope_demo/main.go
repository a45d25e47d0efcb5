package main

import (
	"errors"
	"fmt"

	"github.com/gocrud/beans/di"
)

// ===== 组件 =====

type Clock struct {
	id int
}

var clockCounter int

func NewClock() *Clock {
	clockCounter++
	return &Clock{id: clockCounter}
}

type Session struct {
	ID    int
	Clock *Clock `di:"clock"`
}

var sessionCounter int

func NewSession() *Session {
	sessionCounter++
	return &Session{ID: sessionCounter}
}

// Handler 持有会话的延迟访问器，每次调用得到一个新的会话
type Handler struct {
	Sessions di.Provider[*Session] `di:"session,lazy"`
	Clock    *Clock                `di:"clock"`
}

type Ping struct {
	Pong *Pong
}

type Pong struct {
	Ping *Ping
}

func main() {
	f := di.NewFactory()

	di.MustRegister[*Clock](f, "clock", di.WithConstructor(NewClock))
	di.MustRegister[*Session](f, "session", di.WithConstructor(NewSession), di.WithUnshared())
	di.MustRegister[*Handler](f, "handler")

	if err := f.Validate(); err != nil {
		fmt.Println("validation failed:", err)
		return
	}

	handler := di.MustResolve[*Handler](f)
	first, second := handler.Sessions(), handler.Sessions()
	fmt.Printf("sessions: #%d #%d\n", first.ID, second.ID)
	fmt.Printf("clock shared: %v\n", first.Clock == handler.Clock && second.Clock == handler.Clock)

	// 非共享组件按名称获取时得到句柄，物化后才是实例
	v, _ := f.GetByName("session")
	if h, ok := v.(*di.UnsharedInstance); ok {
		s, _ := h.Get()
		fmt.Printf("handle %s -> session #%d\n", h.Name(), s.(*Session).ID)
	}

	// 构造函数之间的循环引用
	di.MustRegister[*Ping](f, "ping", di.WithConstructor(func(p *Pong) *Ping { return &Ping{Pong: p} }))
	di.MustRegister[*Pong](f, "pong", di.WithConstructor(func(p *Ping) *Pong { return &Pong{Ping: p} }))

	_, err := f.GetByName("ping")
	fmt.Printf("circular: %v (%s)\n", errors.Is(err, di.ErrCircular), di.KindOf(err))
}
