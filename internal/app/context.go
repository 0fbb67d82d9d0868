package app

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying a
func NewContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the App stored by NewContext, if any
func FromContext(ctx context.Context) (*App, bool) {
	a, ok := ctx.Value(ctxKey{}).(*App)
	return a, ok && a != nil
}
