package lib

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator validates `validate` struct tags. It satisfies gin's
// binding.StructValidator so request bodies and model outputs share rules.
type Validator struct {
	once     sync.Once
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("validate")
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// ValidateStruct validates structs, pointers to structs and slices of them.
// Other kinds carry no tags and pass.
func (v *Validator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	v.lazyinit()
	return v.validateValue(reflect.ValueOf(obj))
}

func (v *Validator) validateValue(value reflect.Value) error {
	switch value.Kind() {
	case reflect.Ptr, reflect.Interface:
		if value.IsNil() {
			return nil
		}
		return v.validateValue(value.Elem())
	case reflect.Struct:
		return v.validate.Struct(value.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.validateValue(value.Index(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Validator) Engine() any {
	v.lazyinit()
	return v.validate
}
