package di

import "time"

// Observer 接收组件构建事件，用于指标或审计。
type Observer interface {
	// OnCreated 在组件完成构建和注入后调用
	OnCreated(name string, scope ScopeType, elapsed time.Duration)
	// OnFailed 在组件构建失败时调用，每个失败的组件只上报一次
	OnFailed(name string, err error)
}

// ObserverFuncs 把函数适配为 Observer，未设置的回调被忽略
type ObserverFuncs struct {
	Created func(name string, scope ScopeType, elapsed time.Duration)
	Failed  func(name string, err error)
}

func (o ObserverFuncs) OnCreated(name string, scope ScopeType, elapsed time.Duration) {
	if o.Created != nil {
		o.Created(name, scope, elapsed)
	}
}

func (o ObserverFuncs) OnFailed(name string, err error) {
	if o.Failed != nil {
		o.Failed(name, err)
	}
}
