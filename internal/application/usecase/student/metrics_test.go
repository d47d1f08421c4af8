package student

import (
	"context"
	"testing"
	"time"

	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/DioGolang/lifthub/internal/infra/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2025, 6, 15, 20, 41, 20, 0, time.UTC)

func TestRegisterMetricsDecorator(t *testing.T) {
	m := new(mockMetrics)
	m.On("RecordUseCaseExecution", "RegisterStudent", true, mock.AnythingOfType("time.Duration")).Once()
	m.On("RecordUseCaseExecution", "RegisterStudent", false, mock.AnythingOfType("time.Duration")).Once()
	d := &RegisterMetricsDecorator{Next: NewRegisterUseCase(database.NewMemoryStore()), Metrics: m}

	_, err := d.Execute(context.Background(), RegisterInput{CPF: validCPF})
	assert.NoError(t, err)
	_, err = d.Execute(context.Background(), RegisterInput{CPF: validCPF})
	assert.ErrorIs(t, err, entity.ErrDuplicateCPF)

	m.AssertExpectations(t)
}

func TestRemoveMetricsDecorator(t *testing.T) {
	m := new(mockMetrics)
	m.On("RecordUseCaseExecution", "RemoveStudent", false, mock.AnythingOfType("time.Duration")).Once()
	d := &RemoveMetricsDecorator{Next: NewRemoveUseCase(database.NewMemoryStore(), nil), Metrics: m}

	err := d.Execute(context.Background(), RemoveInput{CPF: validCPF})

	assert.ErrorIs(t, err, entity.ErrStudentNotFound)
	m.AssertExpectations(t)
}
