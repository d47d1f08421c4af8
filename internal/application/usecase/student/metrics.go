package student

import (
	"context"
	"time"

	"github.com/DioGolang/lifthub/pkg/metrics"
)

type RegisterMetricsDecorator struct {
	Next    RegisterUseCase
	Metrics metrics.Metrics
}

func (d *RegisterMetricsDecorator) Execute(ctx context.Context, input RegisterInput) (StudentOutput, error) {
	start := time.Now()
	output, err := d.Next.Execute(ctx, input)
	d.Metrics.RecordUseCaseExecution("RegisterStudent", err == nil, time.Since(start))
	return output, err
}

type ListMetricsDecorator struct {
	Next    ListUseCase
	Metrics metrics.Metrics
}

func (d *ListMetricsDecorator) Execute(ctx context.Context) ([]StudentOutput, error) {
	start := time.Now()
	output, err := d.Next.Execute(ctx)
	d.Metrics.RecordUseCaseExecution("ListStudents", err == nil, time.Since(start))
	return output, err
}

type FindMetricsDecorator struct {
	Next    FindUseCase
	Metrics metrics.Metrics
}

func (d *FindMetricsDecorator) Execute(ctx context.Context, input FindInput) (StudentOutput, error) {
	start := time.Now()
	output, err := d.Next.Execute(ctx, input)
	d.Metrics.RecordUseCaseExecution("FindStudent", err == nil, time.Since(start))
	return output, err
}

type UpdateMetricsDecorator struct {
	Next    UpdateUseCase
	Metrics metrics.Metrics
}

func (d *UpdateMetricsDecorator) Execute(ctx context.Context, input UpdateInput) (StudentOutput, error) {
	start := time.Now()
	output, err := d.Next.Execute(ctx, input)
	d.Metrics.RecordUseCaseExecution("UpdateStudent", err == nil, time.Since(start))
	return output, err
}

type RemoveMetricsDecorator struct {
	Next    RemoveUseCase
	Metrics metrics.Metrics
}

func (d *RemoveMetricsDecorator) Execute(ctx context.Context, input RemoveInput) error {
	start := time.Now()
	err := d.Next.Execute(ctx, input)
	d.Metrics.RecordUseCaseExecution("RemoveStudent", err == nil, time.Since(start))
	return err
}
