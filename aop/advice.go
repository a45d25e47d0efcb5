package aop

// Invocation 描述一次经过代理的方法调用。
// 通知可以读取 Target/Method，也可以在目标执行前改写 Args。
type Invocation struct {
	Target any
	Method string
	Args   []any
}

// BeforeAdvice 前置通知，返回 error 时目标方法不会被调用。
type BeforeAdvice interface {
	Before(inv *Invocation) error
}

// AfterReturningAdvice 后置通知，仅在目标方法正常返回后执行。
type AfterReturningAdvice interface {
	AfterReturning(inv *Invocation, results []any) error
}

// ThrowsAdvice 异常通知，目标方法返回非 nil error 或 panic 时执行。
type ThrowsAdvice interface {
	AfterThrowing(inv *Invocation, err error)
}

// AroundAdvice 环绕通知，由 proceed 决定是否以及何时调用后续链路。
type AroundAdvice interface {
	Around(inv *Invocation, proceed func() ([]any, error)) ([]any, error)
}

// BeforeFunc 函数形式的前置通知
type BeforeFunc func(inv *Invocation) error

func (f BeforeFunc) Before(inv *Invocation) error { return f(inv) }

// AfterReturningFunc 函数形式的后置通知
type AfterReturningFunc func(inv *Invocation, results []any) error

func (f AfterReturningFunc) AfterReturning(inv *Invocation, results []any) error {
	return f(inv, results)
}

// ThrowsFunc 函数形式的异常通知
type ThrowsFunc func(inv *Invocation, err error)

func (f ThrowsFunc) AfterThrowing(inv *Invocation, err error) { f(inv, err) }

// AroundFunc 函数形式的环绕通知
type AroundFunc func(inv *Invocation, proceed func() ([]any, error)) ([]any, error)

func (f AroundFunc) Around(inv *Invocation, proceed func() ([]any, error)) ([]any, error) {
	return f(inv, proceed)
}

// isAdvice 判断 v 是否至少实现了一种通知接口
func isAdvice(v any) bool {
	switch v.(type) {
	case BeforeAdvice, AfterReturningAdvice, ThrowsAdvice, AroundAdvice:
		return true
	}
	return false
}
