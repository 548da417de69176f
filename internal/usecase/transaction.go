package usecase

import (
	"context"
	"fmt"

	"github.com/xavierca1/leadreach/internal/logging"
)

// Transaction runs named steps in order. When a step fails, the compensations
// registered for the steps that already succeeded run in reverse order.
type Transaction struct {
	operations    []Operation
	compensations map[int]Compensation
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction() *Transaction {
	return &Transaction{compensations: map[int]Compensation{}}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
}

// AddCompensation undoes the most recently added operation.
func (t *Transaction) AddCompensation(name string, fn func(context.Context) error) {
	t.compensations[len(t.operations)-1] = Compensation{name, fn}
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", op.Name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) {
	for i := failedAtIndex - 1; i >= 0; i-- {
		comp, ok := t.compensations[i]
		if !ok {
			continue
		}
		if err := comp.Fn(ctx); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("compensation", comp.Name).Msg("compensation failed, stores may be inconsistent")
		}
	}
}
