// Package validation holds the field rules shared by request binding and the
// service layer, and registers them as validator tags on gin's binding engine.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254
	MaxSlugLength     = 50
	MaxNameLength     = 256

	// reserved for the /users/me endpoint
	reservedUsername = "me"
)

var (
	ErrUsernameReserved = errors.New(`username "me" is not allowed`)
	ErrUsernamePattern  = errors.New("username may only contain letters, digits and @/./+/-/_")
	ErrUsernameLength   = fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	ErrSlugPattern      = errors.New("slug may only contain latin letters, digits, hyphens and underscores")
	ErrYearInFuture     = errors.New("year cannot be in the future")
)

// Username checks the account name rules.
func Username(s string) error {
	if strings.EqualFold(s, reservedUsername) {
		return ErrUsernameReserved
	}
	if len(s) > MaxUsernameLength {
		return ErrUsernameLength
	}
	if !usernamePattern.MatchString(s) {
		return ErrUsernamePattern
	}
	return nil
}

// Slug checks a category or genre slug.
func Slug(s string) error {
	if !slugPattern.MatchString(s) {
		return ErrSlugPattern
	}
	return nil
}

// Year rejects release years after the current one.
func Year(year int, now time.Time) error {
	if year > now.Year() {
		return ErrYearInFuture
	}
	return nil
}

// Register installs the custom tags on the validator used by gin's ShouldBind*
// and makes validation errors report JSON field names.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	rules := map[string]validator.Func{
		"username": func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		},
		"notme": func(fl validator.FieldLevel) bool {
			return !strings.EqualFold(fl.Field().String(), reservedUsername)
		},
		"slug": func(fl validator.FieldLevel) bool {
			return Slug(fl.Field().String()) == nil
		},
		"notfuture": func(fl validator.FieldLevel) bool {
			return Year(int(fl.Field().Int()), time.Now()) == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q: %w", tag, err)
		}
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// FieldErrors turns validator output into field -> messages.
func FieldErrors(err error) (map[string][]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], message(fe))
	}
	return fields, true
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "username":
		return ErrUsernamePattern.Error()
	case "notme":
		return ErrUsernameReserved.Error()
	case "slug":
		return ErrSlugPattern.Error()
	case "notfuture":
		return ErrYearInFuture.Error()
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}
