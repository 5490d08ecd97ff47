package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// newLocationPayload mirrors the creation body in schema order. Pointers
// distinguish a missing value from a zero one, so latitude 0 is accepted.
type newLocationPayload struct {
	Name       *string  `json:"name" validate:"required,min=1"`
	Latitude   *float64 `json:"latitude" validate:"required"`
	Longitude  *float64 `json:"longitude" validate:"required"`
	IsFavorite *bool    `json:"isFavorite"`
	Country    *string  `json:"country"`
	Admin1     *string  `json:"admin1"`
}

// ParseNewLocation decodes and validates a location creation body.
// Fields are checked one at a time in declaration order, so the returned
// *ValidationError names the first field that is missing, mistyped or invalid.
func ParseNewLocation(body []byte) (NewLocation, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return NewLocation{}, decodeError(err)
	}
	if obj == nil {
		return NewLocation{}, &ValidationError{Message: "Expected object, received null"}
	}

	var p newLocationPayload
	v := reflect.ValueOf(&p).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]

		if raw, ok := obj[name]; ok {
			if err := json.Unmarshal(raw, v.Field(i).Addr().Interface()); err != nil {
				verr := decodeError(err)
				verr.Field = name
				return NewLocation{}, verr
			}
		}

		if err := validate.Var(v.Field(i).Interface(), f.Tag.Get("validate")); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return NewLocation{}, fieldError(name, verrs[0].Tag())
			}
			return NewLocation{}, err
		}
	}

	in := NewLocation{
		Name:      *p.Name,
		Latitude:  *p.Latitude,
		Longitude: *p.Longitude,
		Country:   p.Country,
		Admin1:    p.Admin1,
	}
	if p.IsFavorite != nil {
		in.IsFavorite = *p.IsFavorite
	}
	return in, nil
}

func decodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{
			Message: fmt.Sprintf("Expected %s, received %s", jsonKind(typeErr.Type), receivedKind(typeErr.Value)),
		}
	}
	return &ValidationError{Message: "Invalid JSON body"}
}

func fieldError(field, tag string) *ValidationError {
	switch tag {
	case "required":
		return &ValidationError{Field: field, Message: "Required"}
	case "min":
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must not be empty", capitalize(field))}
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("Invalid value (%s)", tag)}
	}
}

// receivedKind renames encoding/json's value kinds to JSON type names.
func receivedKind(v string) string {
	if v == "bool" {
		return "boolean"
	}
	if strings.HasPrefix(v, "number") {
		return "number"
	}
	return v
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "number"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return t.Kind().String()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
