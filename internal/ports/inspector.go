package ports

import (
	"context"

	"mad-scanner/internal/types"
)

// InspectorPort runs the binary-inspection tool against one artifact and
// returns its raw text output for the requested mode.
type InspectorPort interface {
	Dump(ctx context.Context, mode types.DumpMode, artifactPath string) (string, error)
}
