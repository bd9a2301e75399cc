package flow

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/imishinist/go-csp/channel"
)

// DefaultLineLength is the width of an output line of the 125-column printer
// in the card-to-line reformatting problem.
const DefaultLineLength = 125

// Options parameterizes the character stages. Start from DefaultOptions.
type Options struct {
	// Marker is the value whose adjacent pairs are collapsed.
	Marker rune `validate:"required"`
	// Collapsed replaces a pair of markers.
	Collapsed rune `validate:"required"`
	// Separator is emitted after every disassembled record.
	Separator rune `validate:"required"`
	// Pad fills the last, short line.
	Pad rune `validate:"required"`
	// LineLength is the number of runes per assembled line.
	LineLength int `validate:"gt=0"`
	// Capacity of the intermediate channels; channel.Unbounded is allowed.
	Capacity int `validate:"gte=-1"`
	// BlankTail emits a final all-pad line when the input ends on a line
	// boundary. By default a final line is only emitted for pending runes.
	BlankTail bool
}

// DefaultOptions returns '*' pairs collapsed to '↑', space separator and
// padding, and DefaultLineLength.
func DefaultOptions() Options {
	return Options{
		Marker:     '*',
		Collapsed:  '↑',
		Separator:  ' ',
		Pad:        ' ',
		LineLength: DefaultLineLength,
		Capacity:   0,
	}
}

var validate = validator.New()

func (o Options) validate(stage string) error {
	return validateStruct(stage, o)
}

func validateStruct(stage string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrapf(err, "flow: validate %q", stage)
	}
	cerr := &ConfigurationError{Stage: stage}
	for _, e := range verrs {
		cerr.Fields = append(cerr.Fields, FieldError{
			Field:   toSnakeCase(e.Field()),
			Message: formatValidationMessage(e),
		})
	}
	return cerr
}

func formatValidationMessage(e validator.FieldError) string {
	field := toSnakeCase(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		if e.Param() == fmt.Sprint(channel.Unbounded) {
			return fmt.Sprintf("%s must be non-negative or unbounded (%d)", field, channel.Unbounded)
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
