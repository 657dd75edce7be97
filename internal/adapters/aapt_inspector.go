package adapters

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"mad-scanner/internal/ports"
	"mad-scanner/internal/shared"
	"mad-scanner/internal/types"
)

const defaultAaptPath = "aapt2"

// AaptInspector shells out to aapt2 (or a compatible aapt binary) and
// returns the raw dump text from stdout.
type AaptInspector struct {
	ToolPath string
}

func NewAaptInspector(toolPath string) AaptInspector {
	if strings.TrimSpace(toolPath) == "" {
		toolPath = defaultAaptPath
	}
	return AaptInspector{ToolPath: toolPath}
}

func (a AaptInspector) Dump(ctx context.Context, mode types.DumpMode, artifactPath string) (string, error) {
	if mode != types.DumpModePermissions && mode != types.DumpModeBadging {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported dump mode: " + string(mode))
	}
	if strings.TrimSpace(artifactPath) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("artifact path is empty")
	}
	tool := a.ToolPath
	if strings.TrimSpace(tool) == "" {
		tool = defaultAaptPath
	}
	cmd := exec.CommandContext(ctx, tool, "dump", string(mode), artifactPath)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		cause := shared.CommandError(stderr.Bytes(), err)
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s dump %s failed: %s", tool, mode, cause.Error())).
			WithCause(cause)
	}
	return stdout.String(), nil
}

var _ ports.InspectorPort = AaptInspector{}
