// Package validate checks the clinic's form input with struct tags and turns
// failures into per-field French messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalid is matched by every *Error.
var ErrInvalid = errors.New("invalid input")

// Error carries one message per offending field, keyed by JSON name.
type Error struct {
	Fields map[string]string
}

func NewError(field, message string) *Error {
	return &Error{Fields: map[string]string{field: message}}
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrInvalid }

const (
	MsgPhone  = "Le numéro de téléphone doit contenir exactement 10 chiffres"
	MsgCIN    = "Le CIN doit contenir uniquement des lettres et des chiffres"
	MsgEmail  = "Format d'email invalide"
	MsgAmount = "Le montant doit être un nombre positif"
)

var (
	phoneRe = regexp.MustCompile(`^\d{10}$`)
	cinRe   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func IsPhone(s string) bool { return phoneRe.MatchString(s) }
func IsCIN(s string) bool   { return cinRe.MatchString(s) }
func IsEmail(s string) bool { return emailRe.MatchString(s) }

// Validator wraps validator/v10 with the clinic's custom tags:
// phone10, cin, simpleemail and amount.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	must(v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	}))
	must(v.RegisterValidation("cin", func(fl validator.FieldLevel) bool {
		return IsCIN(fl.Field().String())
	}))
	must(v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	}))
	must(v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && !d.IsNegative()
	}))
	return &Validator{v: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates s. Rule failures come back as *Error; anything else
// (a nil or non-struct argument) is returned as is.
func (cv *Validator) Struct(s any) error {
	err := cv.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return &Error{Fields: FormatValidationErrors(verrs)}
}

// FormatValidationErrors maps each failed rule to a message for its field.
func FormatValidationErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(e)
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if", "required_with":
		return "Ce champ est obligatoire"
	case "phone10":
		return MsgPhone
	case "cin":
		return MsgCIN
	case "simpleemail", "email":
		return MsgEmail
	case "amount":
		return MsgAmount
	case "datetime":
		return fmt.Sprintf("Format invalide, attendu %s", e.Param())
	case "oneof":
		return fmt.Sprintf("Valeur non autorisée, choix possibles : %s", e.Param())
	case "max":
		return fmt.Sprintf("Doit contenir au plus %s caractères", e.Param())
	case "min":
		return fmt.Sprintf("Doit contenir au moins %s caractères", e.Param())
	case "gte":
		return fmt.Sprintf("Doit être supérieur ou égal à %s", e.Param())
	default:
		return "Valeur invalide"
	}
}

// SanitizePhone applies one keystroke to the phone field: non-digits are
// dropped and an edit that would exceed ten digits is refused, keeping prev.
func SanitizePhone(prev, typed string) string {
	var b strings.Builder
	for _, r := range typed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() > 10 {
		return prev
	}
	return b.String()
}
