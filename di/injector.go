package di

import (
	"fmt"
	"reflect"

	"github.com/gocrud/beans/logging"
)

// inject 对原始实例执行字段注入和方法注入
func (f *Factory) inject(desc *ComponentDescriptor, raw any) error {
	if len(desc.Fields) == 0 && len(desc.Methods) == 0 {
		return nil
	}
	f.injecting[desc.Name] = true
	defer delete(f.injecting, desc.Name)

	target := reflect.ValueOf(raw)
	if err := f.injectFields(desc, target); err != nil {
		return err
	}
	return f.injectMethods(desc, target)
}

// injectFields 按声明顺序注入字段。
// 可选依赖未找到时保留字段原值；赋值失败总是错误。
// 失败前已赋值的字段不回滚。
func (f *Factory) injectFields(desc *ComponentDescriptor, target reflect.Value) error {
	for _, fr := range desc.Fields {
		dep, ok, err := f.resolve(fr.Requirement)
		if err != nil {
			return err
		}
		if !ok {
			if fr.Required {
				return &BeanError{Kind: ErrUnsatisfied, Name: desc.Name, Ref: fmt.Sprintf("%s of field %s", fr.Requirement, fr.Field)}
			}
			f.logger.Trace("optional field left unset",
				logging.Field{Key: "name", Value: desc.Name},
				logging.Field{Key: "field", Value: fr.Field})
			continue
		}

		if err := f.assign(target, fr, dep); err != nil {
			if be, ok := asBeanError(err); ok {
				return be
			}
			return &BeanError{Kind: ErrFieldInjection, Name: desc.Name, Ref: fr.Field, Err: err}
		}
	}
	return nil
}

func (f *Factory) assign(target reflect.Value, fr FieldRequirement, dep any) error {
	slot, err := f.introspector.FieldType(target.Type(), fr.Field)
	if err != nil {
		return err
	}
	v, err := f.slotValue(fr.Requirement, slot, dep)
	if err != nil {
		return err
	}
	return f.introspector.SetField(target, fr.Field, v)
}

// injectMethods 按声明顺序调用初始化方法。
// 依赖构建失败总是向上传播；参数不满足或调用失败只在方法为 required 时报错，否则被吸收。
func (f *Factory) injectMethods(desc *ComponentDescriptor, target reflect.Value) error {
	for _, mr := range desc.Methods {
		err := f.injectMethod(desc, target, mr)
		if err == nil {
			continue
		}
		if be, ok := asBeanError(err); ok && (be.Kind != ErrUnsatisfied || be.Name != desc.Name) {
			return be
		}
		if mr.Required {
			if be, ok := asBeanError(err); ok {
				return be
			}
			return &BeanError{Kind: ErrMethodInjection, Name: desc.Name, Ref: mr.Method, Err: err}
		}
		f.logger.Debug("optional method injection skipped",
			logging.Field{Key: "name", Value: desc.Name},
			logging.Field{Key: "method", Value: mr.Method},
			logging.Field{Key: "error", Value: err.Error()})
	}
	return nil
}

func (f *Factory) injectMethod(desc *ComponentDescriptor, target reflect.Value, mr MethodRequirement) error {
	params, err := f.introspector.MethodParams(target.Type(), mr.Method)
	if err != nil {
		return err
	}
	if len(params) != len(mr.Args) {
		return fmt.Errorf("method %s takes %d arguments, %d declared", mr.Method, len(params), len(mr.Args))
	}

	args := make([]reflect.Value, len(params))
	for i, req := range mr.Args {
		v, err := f.argument(desc.Name, req, params[i])
		if err != nil {
			return err
		}
		args[i] = v
	}
	return f.introspector.Invoke(target, mr.Method, args)
}
