package ports

import (
	"context"

	"mad-scanner/internal/types"
)

type AlertSinkPort interface {
	Emit(ctx context.Context, alert types.AlertEvent)
}
