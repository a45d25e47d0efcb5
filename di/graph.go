package di

import (
	"fmt"
)

// Validate 静态检查整个注册表：必需依赖是否都能找到，构造依赖是否成环。
// 不会构建任何组件，适合在启动时快速失败。
func (f *Factory) Validate() error {
	dependencies := make(map[string][]string, len(f.order))

	// 1. 提取构造依赖并检查必需依赖
	for _, name := range f.order {
		desc := f.descriptors[name]
		for _, req := range desc.ConstructorArgs {
			target := f.target(req)
			if target == nil {
				if req.Required {
					return &BeanError{Kind: ErrUnsatisfied, Name: name, Ref: req.String()}
				}
				continue
			}
			dependencies[name] = append(dependencies[name], target.Name)
		}
		for _, fr := range desc.Fields {
			if fr.Required && f.target(fr.Requirement) == nil {
				return &BeanError{Kind: ErrUnsatisfied, Name: name, Ref: fmt.Sprintf("%s of field %s", fr.Requirement, fr.Field)}
			}
		}
		for _, mr := range desc.Methods {
			if !mr.Required {
				continue
			}
			for _, req := range mr.Args {
				if req.Required && f.target(req) == nil {
					return &BeanError{Kind: ErrUnsatisfied, Name: name, Ref: fmt.Sprintf("%s of method %s", req, mr.Method)}
				}
			}
		}
	}

	// 2. 基于 DFS 的环检测
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)

	var visit func(string) error
	visit = func(u string) error {
		visited[u] = true
		recursionStack[u] = true

		for _, v := range dependencies[u] {
			if !visited[v] {
				if err := visit(v); err != nil {
					return err
				}
			} else if recursionStack[v] {
				return &BeanError{Kind: ErrCircular, Name: u, Ref: v}
			}
		}

		recursionStack[u] = false
		return nil
	}

	for _, name := range f.order {
		if !visited[name] {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}
