package validator

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/access"
)

var once sync.Once

// Init registers custom validations on gin's binding engine.
// Safe to call more than once.
func Init() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		// Use JSON tag names in error messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return access.Role(fl.Field().String()).Valid()
		})
	})
}

// Register adds a string validation under tag. Features use it for their
// own enums.
func Register(tag string, valid func(string) bool) error {
	Init()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("binding engine is not go-playground/validator")
	}
	return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	})
}

// IsValidObjectID checks if s is a 24 character hex Mongo ObjectID
func IsValidObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// Errors converts binding errors into a field → message map.
// It returns nil when err is not a validation error.
func Errors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = "This field is required"
		case "min":
			out[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			out[field] = "Value is too long (max: " + fe.Param() + ")"
		case "gte":
			out[field] = "Value must be at least " + fe.Param()
		case "lte":
			out[field] = "Value must be at most " + fe.Param()
		case "oneof":
			out[field] = "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
		case "objectid":
			out[field] = "Invalid id format"
		case "role":
			out[field] = "Unknown role"
		default:
			out[field] = "Invalid value"
		}
	}
	return out
}

// FirstError returns one human readable message for a binding error
func FirstError(err error) string {
	fields := Errors(err)
	if len(fields) == 0 {
		return "Invalid request format"
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0] + ": " + fields[keys[0]]
}
