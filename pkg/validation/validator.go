package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for book semantics.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the tag name function, aliases and custom tags to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("bookstatus", "oneof=want-to-read reading finished")
	v.RegisterAlias("rating", "min=1,max=5")
	v.RegisterAlias("pagecount", "min=1,max=100000")
	v.RegisterAlias("goal", "min=1,max=1000")
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() == reflect.String {
			return strings.TrimSpace(f.String()) != ""
		}
		return !f.IsZero()
	})
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) {
		return map[string]string{"payload": "invalid json"}
	}
	if errors.As(err, &ute) {
		if ute.Field != "" {
			return map[string]string{ute.Field: "must be a " + ute.Type.String()}
		}
		return map[string]string{"payload": "invalid json"}
	}

	// Query/path parameters bound through strconv
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return map[string]string{"query": "must be numeric"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	// ===== PRESENCE =====
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + param + " is present"
	case "required_if":
		return "is required if " + param
	case "notblank":
		return "must not be blank"

	// ===== STRING FORMAT =====
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "jwt":
		return "must be a valid JWT token"

	// ===== SIZE/LENGTH =====
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(kind) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(kind) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"

	// ===== NUMERIC COMPARISON =====
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lt":
		return "must be less than " + param
	case "lte":
		return "must be less than or equal to " + param
	case "ltefield":
		return "must be less than or equal to " + param + " field"

	// ===== INCLUSION =====
	case "oneof":
		return "must be one of: " + strings.Join(splitParams(param), ", ")

	// ===== CUSTOM ALIASES =====
	case "bookstatus":
		return "must be one of: want-to-read, reading, finished"
	case "rating":
		return "must be between 1 and 5"
	case "pagecount":
		return "must be between 1 and 100000"
	case "goal":
		return "must be between 1 and 1000"

	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

// Helper functions
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

func splitParams(p string) []string {
	if p == "" {
		return nil
	}
	parts := strings.Fields(p)
	if len(parts) > 1 {
		return parts
	}
	if strings.Contains(p, ",") {
		return strings.Split(p, ",")
	}
	return []string{p}
}
