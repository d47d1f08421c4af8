package event

import (
	"context"
	"errors"
)

const (
	Exchange     = "lifthub.students"
	AuditQueue   = "students.audit"
	AuditBinding = "student.#"

	HeaderEventID      = "x-event-id"
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
	HeaderAggregateID  = "x-aggregate-id"
)

// ErrPermanent marks failures that no retry can fix; the consumer drops such
// messages instead of requeueing them.
var ErrPermanent = errors.New("permanent failure")

type MessageHandler func(ctx context.Context, body []byte, headers map[string]interface{}) error

func isPermanent(err error) bool {
	return err != nil && errors.Is(err, ErrPermanent)
}
