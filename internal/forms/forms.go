// Package forms evaluates per-field validation rules before any side effect.
// Each table maps a struct field to the form input it came from and the
// message shown next to that input when a rule fails.
package forms

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// "price" accepts anything that parses to a finite float: .5, 1e3, 120.
	if err := v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, ok := ParsePrice(fl.Field().String())
		return ok
	}); err != nil {
		panic(err)
	}
	return v
}

// ParsePrice trims v and parses it as a finite number.
func ParsePrice(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Field describes one input: its form name and a message per failing rule.
// Default is used for any rule without its own message.
type Field struct {
	Name     string
	Default  string
	Messages map[string]string
}

// Table is keyed by Go struct field name.
type Table map[string]Field

// Errors maps form input names to the inline message for that input.
type Errors map[string]string

func (e Errors) Any() bool { return len(e) > 0 }

func (e Errors) Get(name string) string { return e[name] }

// Validate runs the struct's validate tags and translates failures through t.
// A nil result means the value passed every rule.
func Validate(v any, t Table) Errors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Errors{"_": err.Error()}
	}
	out := Errors{}
	for _, fe := range ves {
		f, ok := t[fe.StructField()]
		if !ok {
			out[strings.ToLower(fe.Field())] = fe.Error()
			continue
		}
		// first failing rule wins
		if _, seen := out[f.Name]; seen {
			continue
		}
		msg := f.Messages[fe.Tag()]
		if msg == "" {
			msg = f.Default
		}
		out[f.Name] = msg
	}
	return out
}

// Checked reports whether a checkbox value means "on". Absent boxes arrive as "".
func Checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1":
		return true
	}
	return false
}
