package ports

import (
	"context"

	"mad-scanner/internal/types"
)

type DetectorPort interface {
	Detect(ctx context.Context, artifactPath string) (types.Verdict, error)
}
