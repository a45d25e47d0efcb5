package manifest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Document 组件清单
//
//	components:
//	  - name: repo
//	    type: memRepo
//	  - name: service
//	    type: service
//	    scope: unshared
//	    scan: true
//	    constructor:
//	      - ref: repo
//	    fields:
//	      - field: Clock
//	        type: clock
//	        optional: true
//	    methods:
//	      - method: Init
//	        required: true
type Document struct {
	Components []Component `yaml:"components" validate:"unique=Name,dive"`
}

// Component 清单中的一个组件
type Component struct {
	Name        string       `yaml:"name" validate:"required"`
	Type        string       `yaml:"type" validate:"required"`
	Scope       string       `yaml:"scope" validate:"omitempty,oneof=shared unshared"`
	Lazy        bool         `yaml:"lazy"`
	Scan        bool         `yaml:"scan"` // 读取类型上的 di 标签
	Constructor []Dependency `yaml:"constructor" validate:"dive"`
	Fields      []Field      `yaml:"fields" validate:"dive"`
	Methods     []Method     `yaml:"methods" validate:"dive"`
}

// Dependency 依赖声明，ref 和 type 都为空时按注入点类型解析
type Dependency struct {
	Ref      string `yaml:"ref"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional"`
	Deferred bool   `yaml:"deferred"`
}

// Field 字段注入
type Field struct {
	Field      string `yaml:"field" validate:"required"`
	Dependency `yaml:",inline"`
}

// Method 方法注入
type Method struct {
	Method   string       `yaml:"method" validate:"required"`
	Required bool         `yaml:"required"`
	Args     []Dependency `yaml:"args" validate:"dive"`
}

var validate = validator.New()

// Parse 解析并校验清单
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("manifest: failed to parse: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("manifest: %w", formatValidationError(err))
	}
	return &doc, nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.TrimPrefix(e.Namespace(), "Document.")
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "unique":
			messages = append(messages, fmt.Sprintf("%s must have unique %s", field, strings.ToLower(e.Param())))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
