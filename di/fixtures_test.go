package di_test

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/gocrud/beans/di"
)

type Repo interface {
	Find(id int) string
}

type memRepo struct {
	prefix string
}

func (r *memRepo) Find(id int) string {
	return fmt.Sprintf("%s%d", r.prefix, id)
}

func newMemRepo() *memRepo {
	return &memRepo{prefix: "mem-"}
}

type fixedRepo struct{}

func (fixedRepo) Find(int) string { return "fixed" }

type A struct {
	ID int
}

type B struct {
	A *A
}

type Service struct {
	Repo  Repo `di:""`
	cache Repo `di:"cache,optional"`
}

type CycA struct{ B *CycB }
type CycB struct{ A *CycA }

type Ping struct {
	Pong *Pong `di:""`
}

type Pong struct {
	Ping *Ping `di:""`
}

type Ticket struct {
	Seq int
}

type Clock struct {
	Now string
}

type Widget struct {
	Name  string
	marks []string
}

func (w *Widget) Explode() error {
	return errors.New("boom")
}

func (w *Widget) Panic() {
	panic("kaboom")
}

func (w *Widget) Mark() {
	w.marks = append(w.marks, "marked")
}

func (w *Widget) SetClock(c *Clock) {
	w.Name = c.Now
}

type Order struct {
	Customer *Customer
	Clock    *Clock
}

type Customer struct {
	Order *Order
}

type Counter struct {
	ID int
}

type counterFactory struct {
	n int
}

func (c *counterFactory) GetObject() (any, error) {
	c.n++
	return &Counter{ID: c.n}, nil
}

func (c *counterFactory) ObjectType() reflect.Type {
	return di.TypeOf[*Counter]()
}

func (s *Service) Cache() Repo {
	return s.cache
}

func (w *Widget) Marks() []string {
	return w.marks
}
