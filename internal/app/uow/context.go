package uow

import "context"

type contextKey struct{}

// ContextWithUnitOfWork stores the unit of work for downstream handlers.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, contextKey{}, unit)
}

// FromContext retrieves the unit of work, if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(contextKey{}).(UnitOfWork)
	return unit, ok
}
