package tools

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

// ValidationError reports tool arguments rejected by the tool's schema.
// Fields names the offending arguments; "$" stands for the argument object itself.
type ValidationError struct {
	Tool   string
	Fields []string
	Cause  error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: tool %q: invalid arguments [%s]",
		domain.ErrValidation.Error(), e.Tool, strings.Join(e.Fields, ", "))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return domain.ErrValidation }
