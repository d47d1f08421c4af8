package events

import "time"

const (
	StudentRegistered = "student.registered"
	StudentCPFChanged = "student.cpf_changed"
	StudentRemoved    = "student.removed"
)

// StudentPayload is the body published for every student event.
type StudentPayload struct {
	StudentID   string    `json:"student_id"`
	CPF         string    `json:"cpf"`
	PreviousCPF string    `json:"previous_cpf,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type StudentEvent struct {
	Name    string
	Payload StudentPayload
}

func NewStudentEvent(name string, payload StudentPayload) *StudentEvent {
	return &StudentEvent{Name: name, Payload: payload}
}

func (e *StudentEvent) GetName() string {
	return e.Name
}

func (e *StudentEvent) GetPayload() interface{} {
	return e.Payload
}
