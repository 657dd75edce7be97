package adapters

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"mad-scanner/internal/core"
	"mad-scanner/internal/ports"
)

// InputFileAdapter reads the newline-delimited list of application names.
type InputFileAdapter struct{}

func NewInputFileAdapter() InputFileAdapter {
	return InputFileAdapter{}
}

func (InputFileAdapter) ReadNames(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("input list path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		code := errbuilder.CodeInternal
		if errors.Is(err, fs.ErrNotExist) {
			code = errbuilder.CodeNotFound
		}
		return nil, errbuilder.New().
			WithCode(code).
			WithMsg("failed to read input list " + path).
			WithCause(err)
	}
	return core.ParseInputNames(string(data)), nil
}

var _ ports.InputListPort = InputFileAdapter{}
