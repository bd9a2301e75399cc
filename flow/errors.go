package flow

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrPrematureEndOfStream is returned when a stage needed a second value of a
// pair and its input reached end-of-stream instead.
var ErrPrematureEndOfStream = errors.New("flow: premature end of stream")

// FieldError is a single invalid parameter.
type FieldError struct {
	Field   string
	Message string
}

// ConfigurationError is returned by stage constructors for invalid parameters.
type ConfigurationError struct {
	Stage  string
	Fields []FieldError
}

func (e *ConfigurationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("flow: invalid configuration for %q", e.Stage)
	}
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Message
	}
	return fmt.Sprintf("flow: invalid configuration for %q: %s", e.Stage, strings.Join(messages, "; "))
}
