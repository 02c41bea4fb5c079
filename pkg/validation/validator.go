package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
// Safe to call more than once.
func Init() {
	once.Do(register)
}

var once sync.Once

func register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Aliases for common semantics
		v.RegisterAlias("pwd", "min=8,max=72")        // bcrypt rejects longer input
		v.RegisterAlias("role", "oneof=admin member") // account roles
	}
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
// Tags without a dedicated message get a generic one.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}
	var pe *time.ParseError
	if errors.As(err, &pe) {
		return map[string]string{"payload": "timestamps must be RFC 3339"}
	}

	// Validation errors from validator.v10
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			out[field] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

// messages holds the per-tag wording. Length tags switch to numeric wording
// for number fields.
var messages = map[string]func(param string, numeric bool) string{
	"required": func(string, bool) string { return "is required" },
	"email":    func(string, bool) string { return "must be a valid email" },
	"url":      func(string, bool) string { return "must be a valid URL" },
	"uuid":     func(string, bool) string { return "must be a valid UUID" },
	"len": func(p string, _ bool) string {
		return fmt.Sprintf("must be exactly %s characters long", p)
	},
	"min": func(p string, numeric bool) string {
		if numeric {
			return "must be at least " + p
		}
		return "must be at least " + p + " characters long"
	},
	"max": func(p string, numeric bool) string {
		if numeric {
			return "must be at most " + p
		}
		return "must be at most " + p + " characters long"
	},
	"gtfield": func(p string, _ bool) string { return "must be after " + p },
	"oneof": func(p string, _ bool) string {
		return "must be one of: " + strings.Join(strings.Fields(p), ", ")
	},
	"pwd":  func(string, bool) string { return "must be 8 to 72 characters" },
	"role": func(string, bool) string { return "must be one of: admin, member" },
}

func formatFieldError(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg(fe.Param(), isNumberKind(fe.Kind()))
	}
	if fe.Param() != "" {
		return fmt.Sprintf("validation failed for '%s' with parameter '%s'", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("validation failed for '%s'", fe.Tag())
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
