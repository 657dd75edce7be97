package ports

import (
	"context"

	"mad-scanner/internal/types"
)

// ArtifactSourcePort fetches the artifact named by a request and stores it
// at destPath. A missing artifact is reported with errbuilder.CodeNotFound.
type ArtifactSourcePort interface {
	Acquire(ctx context.Context, request types.ArtifactRequest, destPath string) error
}
