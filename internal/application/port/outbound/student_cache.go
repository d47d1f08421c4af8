package outbound

import (
	"context"

	"github.com/DioGolang/lifthub/internal/domain/entity"
)

// StudentCache is a read-through cache keyed by normalized CPF.
//
// Get returns a fill token alongside the lookup. Set only stores the student
// when no Invalidate for that CPF ran after the token was issued, so a read
// that races a delete or re-key never repopulates the old row. A zero token
// never fills.
type StudentCache interface {
	Get(ctx context.Context, cpf string) (student *entity.Student, token uint64, ok bool)
	Set(ctx context.Context, student *entity.Student, token uint64)
	Invalidate(ctx context.Context, cpfs ...string)
}
