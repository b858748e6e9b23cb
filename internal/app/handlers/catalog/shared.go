package catalog

import (
	"context"

	"stayloom/internal/app/uow"
)

// beginWriteUnit reuses the ambient unit of work or begins one the handler
// commits itself, injecting the unit's execution context (a database session)
// when it carries one.
func beginWriteUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, false, nil
	}
	if factory == nil {
		return nil, ctx, false, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, false, err
	}
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		ctx = injector.InjectContext(ctx)
	}
	return unit, uow.ContextWithUnitOfWork(ctx, unit), true, nil
}
