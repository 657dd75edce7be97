// Package shared provides small helpers used by several packages in the
// mad-scanner codebase.
package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return err
	}
	return fmt.Errorf("%s: %w", trimmed, err)
}

// ErrorMessage renders an error for task outcomes and logs. The errbuilder
// message is always part of the result.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" && !strings.Contains(text, builder.Msg) {
		return builder.Msg + ": " + text
	}
	return text
}
