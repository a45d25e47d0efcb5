package aop

import (
	"fmt"
	"regexp"
)

// Advisor 把切点（哪些方法）和通知（做什么）组合在一起。
type Advisor interface {
	// Matches 判断方法名是否命中切点
	Matches(method string) bool
	// Advice 返回通知对象，至少实现一种通知接口
	Advice() any
}

// RegexpAdvisor 按正则表达式匹配方法名
type RegexpAdvisor struct {
	pattern *regexp.Regexp
	advice  any
}

// NewRegexpAdvisor 创建正则切点顾问
func NewRegexpAdvisor(pattern string, advice any) (*RegexpAdvisor, error) {
	if !isAdvice(advice) {
		return nil, fmt.Errorf("%w: %T", ErrInvalidAdvice, advice)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("aop: invalid pointcut %q: %w", pattern, err)
	}
	return &RegexpAdvisor{pattern: re, advice: advice}, nil
}

// MustRegexpAdvisor 与 NewRegexpAdvisor 相同，出错时 panic
func MustRegexpAdvisor(pattern string, advice any) *RegexpAdvisor {
	a, err := NewRegexpAdvisor(pattern, advice)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *RegexpAdvisor) Matches(method string) bool { return a.pattern.MatchString(method) }

func (a *RegexpAdvisor) Advice() any { return a.advice }

// NameMatchAdvisor 按方法名精确匹配
type NameMatchAdvisor struct {
	names  map[string]struct{}
	advice any
}

// NewNameMatchAdvisor 创建方法名顾问，names 为空时匹配所有方法
func NewNameMatchAdvisor(advice any, names ...string) *NameMatchAdvisor {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &NameMatchAdvisor{names: set, advice: advice}
}

func (a *NameMatchAdvisor) Matches(method string) bool {
	if len(a.names) == 0 {
		return true
	}
	_, ok := a.names[method]
	return ok
}

func (a *NameMatchAdvisor) Advice() any { return a.advice }

// MatchAll 返回对所有方法生效的顾问
func MatchAll(advice any) Advisor {
	return NewNameMatchAdvisor(advice)
}
