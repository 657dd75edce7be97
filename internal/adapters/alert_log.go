package adapters

import (
	"context"

	"github.com/rs/zerolog"

	"mad-scanner/internal/ports"
	"mad-scanner/internal/types"
)

// AlertLogSink delivers alerts as structured log events. A nil Logger falls
// back to the logger carried by the context.
type AlertLogSink struct {
	Logger *zerolog.Logger
}

func NewAlertLogSink(logger *zerolog.Logger) AlertLogSink {
	return AlertLogSink{Logger: logger}
}

func (s AlertLogSink) Emit(ctx context.Context, alert types.AlertEvent) {
	logger := s.Logger
	if logger == nil {
		logger = zerolog.Ctx(ctx)
	}
	switch alert.Kind {
	case types.AlertKindPacked:
		logger.Warn().
			Str("alert", string(alert.Kind)).
			Str("artifact", alert.ArtifactPath).
			Msg("packed file detected")
	case types.AlertKindMalware:
		logger.Error().
			Str("alert", string(alert.Kind)).
			Str("artifact", alert.ArtifactPath).
			Str("finding", alert.FindingName).
			Msg("malware detected")
	default:
		logger.Warn().
			Str("alert", string(alert.Kind)).
			Str("artifact", alert.ArtifactPath).
			Msg("unknown alert")
	}
}

var _ ports.AlertSinkPort = AlertLogSink{}
