package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Student struct {
	ID        uuid.UUID
	Cpf       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const createStudent = `INSERT INTO students (id, cpf, created_at, updated_at) VALUES ($1, $2, $3, $4)`

type CreateStudentParams struct {
	ID        uuid.UUID
	Cpf       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateStudent(ctx context.Context, arg CreateStudentParams) error {
	_, err := q.db.ExecContext(ctx, createStudent, arg.ID, arg.Cpf, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const getStudentByCPF = `SELECT id, cpf, created_at, updated_at FROM students WHERE cpf = $1`

func (q *Queries) GetStudentByCPF(ctx context.Context, cpf string) (Student, error) {
	row := q.db.QueryRowContext(ctx, getStudentByCPF, cpf)
	var i Student
	err := row.Scan(&i.ID, &i.Cpf, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const studentExists = `SELECT EXISTS (SELECT 1 FROM students WHERE cpf = $1)`

func (q *Queries) StudentExists(ctx context.Context, cpf string) (bool, error) {
	row := q.db.QueryRowContext(ctx, studentExists, cpf)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listStudents = `SELECT id, cpf, created_at, updated_at FROM students ORDER BY created_at DESC, cpf`

func (q *Queries) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := q.db.QueryContext(ctx, listStudents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Student
	for rows.Next() {
		var i Student
		if err := rows.Scan(&i.ID, &i.Cpf, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateStudentCPF = `UPDATE students SET cpf = $2, updated_at = $3 WHERE id = $1`

type UpdateStudentCPFParams struct {
	ID        uuid.UUID
	Cpf       string
	UpdatedAt time.Time
}

func (q *Queries) UpdateStudentCPF(ctx context.Context, arg UpdateStudentCPFParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateStudentCPF, arg.ID, arg.Cpf, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteStudentByCPF = `DELETE FROM students WHERE cpf = $1 RETURNING id, cpf, created_at, updated_at`

func (q *Queries) DeleteStudentByCPF(ctx context.Context, cpf string) (Student, error) {
	row := q.db.QueryRowContext(ctx, deleteStudentByCPF, cpf)
	var i Student
	err := row.Scan(&i.ID, &i.Cpf, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const insertOutboxEvent = `INSERT INTO outbox_events (id, aggregate_id, event_type, event_version, payload, topic, trace_context)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

type InsertOutboxEventParams struct {
	ID           uuid.UUID
	AggregateID  string
	EventType    string
	EventVersion int32
	Payload      json.RawMessage
	Topic        string
	TraceContext []byte
}

func (q *Queries) InsertOutboxEvent(ctx context.Context, arg InsertOutboxEventParams) error {
	var traceContext interface{}
	if len(arg.TraceContext) > 0 {
		traceContext = arg.TraceContext
	}
	_, err := q.db.ExecContext(ctx, insertOutboxEvent,
		arg.ID, arg.AggregateID, arg.EventType, arg.EventVersion, []byte(arg.Payload), arg.Topic, traceContext)
	return err
}

const fetchPendingOutboxEvents = `SELECT id, aggregate_id, event_type, event_version, payload, topic, trace_context
FROM outbox_events
WHERE status = 'PENDING' OR (status = 'FAILED' AND attempts < $2)
ORDER BY created_at
LIMIT $1
FOR UPDATE SKIP LOCKED`

type FetchPendingOutboxEventsRow struct {
	ID           uuid.UUID
	AggregateID  string
	EventType    string
	EventVersion int32
	Payload      []byte
	Topic        string
	TraceContext []byte
}

func (q *Queries) FetchPendingOutboxEvents(ctx context.Context, limit int32, maxAttempts int32) ([]FetchPendingOutboxEventsRow, error) {
	rows, err := q.db.QueryContext(ctx, fetchPendingOutboxEvents, limit, maxAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FetchPendingOutboxEventsRow
	for rows.Next() {
		var i FetchPendingOutboxEventsRow
		if err := rows.Scan(&i.ID, &i.AggregateID, &i.EventType, &i.EventVersion, &i.Payload, &i.Topic, &i.TraceContext); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markOutboxAsProcessing = `UPDATE outbox_events SET status = 'PROCESSING', processed_at = now() WHERE id = ANY($1::uuid[])`

func (q *Queries) MarkOutboxAsProcessing(ctx context.Context, ids []uuid.UUID) error {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	_, err := q.db.ExecContext(ctx, markOutboxAsProcessing, pq.Array(strIDs))
	return err
}

const markOutboxAsPublished = `UPDATE outbox_events SET status = 'PUBLISHED', processed_at = now(), error_msg = NULL WHERE id = $1`

func (q *Queries) MarkOutboxAsPublished(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, markOutboxAsPublished, id)
	return err
}

const markOutboxAsFailed = `UPDATE outbox_events SET status = 'FAILED', attempts = attempts + 1, error_msg = $2, processed_at = now() WHERE id = $1`

type MarkOutboxAsFailedParams struct {
	ID       uuid.UUID
	ErrorMsg sql.NullString
}

func (q *Queries) MarkOutboxAsFailed(ctx context.Context, arg MarkOutboxAsFailedParams) error {
	_, err := q.db.ExecContext(ctx, markOutboxAsFailed, arg.ID, arg.ErrorMsg)
	return err
}

const resetStuckEvents = `UPDATE outbox_events SET status = 'PENDING' WHERE status = 'PROCESSING' AND processed_at < now() - $1::interval`

func (q *Queries) ResetStuckEvents(ctx context.Context, olderThan string) error {
	_, err := q.db.ExecContext(ctx, resetStuckEvents, olderThan)
	return err
}

const deleteOldOutboxEvents = `DELETE FROM outbox_events WHERE status = 'PUBLISHED' AND processed_at < now() - $1::interval`

func (q *Queries) DeleteOldOutboxEvents(ctx context.Context, olderThan string) error {
	_, err := q.db.ExecContext(ctx, deleteOldOutboxEvents, olderThan)
	return err
}
