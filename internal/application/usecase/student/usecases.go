package student

import (
	"github.com/DioGolang/lifthub/internal/application/port/outbound"
	"github.com/DioGolang/lifthub/pkg/metrics"
)

// UseCases bundles the student workflow for the transport layers.
type UseCases struct {
	Register RegisterUseCase
	List     ListUseCase
	Find     FindUseCase
	Update   UpdateUseCase
	Remove   RemoveUseCase
}

// NewUseCases wires every use case over the given collaborators. cache may be
// nil; m may be nil to skip instrumentation.
func NewUseCases(uow outbound.UnitOfWork, repo outbound.StudentRepository, cache outbound.StudentCache, m metrics.Metrics) UseCases {
	uc := UseCases{
		Register: NewRegisterUseCase(uow),
		List:     NewListUseCase(repo),
		Find:     NewFindUseCase(repo, cache),
		Update:   NewUpdateUseCase(uow, cache),
		Remove:   NewRemoveUseCase(uow, cache),
	}
	if m == nil {
		return uc
	}
	return UseCases{
		Register: &RegisterMetricsDecorator{Next: uc.Register, Metrics: m},
		List:     &ListMetricsDecorator{Next: uc.List, Metrics: m},
		Find:     &FindMetricsDecorator{Next: uc.Find, Metrics: m},
		Update:   &UpdateMetricsDecorator{Next: uc.Update, Metrics: m},
		Remove:   &RemoveMetricsDecorator{Next: uc.Remove, Metrics: m},
	}
}
