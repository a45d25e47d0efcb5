package manifest

import (
	"fmt"
	"io"
	"os"

	"github.com/gocrud/beans/di"
)

// Descriptors 把清单转换为组件描述符，类型别名通过 table 解析
func Descriptors(doc *Document, table *TypeTable) ([]*di.ComponentDescriptor, error) {
	descs := make([]*di.ComponentDescriptor, 0, len(doc.Components))
	for _, c := range doc.Components {
		desc, err := descriptor(c, table)
		if err != nil {
			return nil, fmt.Errorf("manifest: component %q: %w", c.Name, err)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

func descriptor(c Component, table *TypeTable) (*di.ComponentDescriptor, error) {
	entry, ok := table.Lookup(c.Type)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", c.Type)
	}

	var opts []di.Option
	if c.Scope == "unshared" {
		opts = append(opts, di.WithUnshared())
	}
	if c.Lazy {
		opts = append(opts, di.WithLazy())
	}

	if entry.Constructor != nil {
		args, err := requirements(c.Constructor, table)
		if err != nil {
			return nil, err
		}
		opts = append(opts, di.WithConstructor(entry.Constructor, args...))
	} else if len(c.Constructor) > 0 {
		return nil, fmt.Errorf("type %q has no constructor", c.Type)
	}

	for _, f := range c.Fields {
		req, err := requirement(f.Dependency, table)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Field, err)
		}
		opts = append(opts, di.WithField(f.Field, req))
	}
	for _, m := range c.Methods {
		args, err := requirements(m.Args, table)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Method, err)
		}
		opts = append(opts, di.WithMethod(m.Method, m.Required, args...))
	}

	if c.Scan {
		return di.DescribeType(c.Name, entry.Type, opts...), nil
	}
	return di.NewDescriptor(c.Name, entry.Type, opts...), nil
}

func requirements(deps []Dependency, table *TypeTable) ([]di.Requirement, error) {
	reqs := make([]di.Requirement, 0, len(deps))
	for _, dep := range deps {
		req, err := requirement(dep, table)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func requirement(dep Dependency, table *TypeTable) (di.Requirement, error) {
	req := di.Ref(dep.Ref)
	if dep.Type != "" {
		entry, ok := table.Lookup(dep.Type)
		if !ok {
			return req, fmt.Errorf("unknown dependency type %q", dep.Type)
		}
		req.Type = entry.Type
	}
	if dep.Optional {
		req = req.Optional()
	}
	if dep.Deferred {
		req = req.Lazily()
	}
	return req, nil
}

// Load 解析清单并按顺序注册全部组件，返回注册的组件名称
// 清单中的错误在注册任何组件之前报告
func Load(c di.Container, r io.Reader, table *TypeTable) ([]string, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	descs, err := Descriptors(doc, table)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(descs))
	for _, desc := range descs {
		if err := c.Register(desc); err != nil {
			return names, err
		}
		names = append(names, desc.Name)
	}
	return names, nil
}

// LoadFile 从文件加载清单
func LoadFile(c di.Container, path string, table *TypeTable) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	defer f.Close()
	return Load(c, f, table)
}
