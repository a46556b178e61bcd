// Package validate holds the process-wide validator. A *validator.Validate
// caches struct metadata and is safe for concurrent use, so one instance
// serves every request.
package validate

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON names so messages match the request.
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return instance
}

// Struct checks every validate:"..." tag on s.
func Struct(s any) error {
	return get().Struct(s)
}

