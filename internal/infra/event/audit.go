package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DioGolang/lifthub/pkg/events"
	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/DioGolang/lifthub/pkg/metrics"
)

// AuditHandler writes one structured audit entry per student event.
type AuditHandler struct {
	Logger  logger.Logger
	Metrics metrics.Metrics
}

func NewAuditHandler(l logger.Logger, m metrics.Metrics) *AuditHandler {
	return &AuditHandler{Logger: l, Metrics: m}
}

func (h *AuditHandler) Handle(ctx context.Context, body []byte, headers map[string]interface{}) error {
	eventType, _ := headers[HeaderEventType].(string)
	if eventType == "" {
		eventType = "unknown"
	}

	var payload events.StudentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.Metrics.RecordStudentEvent(eventType, "malformed")
		return fmt.Errorf("%w: decode %s: %v", ErrPermanent, eventType, err)
	}
	if payload.StudentID == "" {
		h.Metrics.RecordStudentEvent(eventType, "malformed")
		return fmt.Errorf("%w: %s without student id", ErrPermanent, eventType)
	}

	fields := []logger.Field{
		logger.String("event_type", eventType),
		logger.String("student_id", payload.StudentID),
		logger.String("cpf", payload.CPF),
		logger.String("occurred_at", payload.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00")),
	}
	if payload.PreviousCPF != "" {
		fields = append(fields, logger.String("previous_cpf", payload.PreviousCPF))
	}
	if id, ok := headers[HeaderEventID].(string); ok {
		fields = append(fields, logger.String("event_id", id))
	}

	h.Logger.Info(ctx, "student audit", fields...)
	h.Metrics.RecordStudentEvent(eventType, "audited")
	return nil
}
