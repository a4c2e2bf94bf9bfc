// Package requestctx carries per-request metadata from the HTTP edge down to
// the audit trail without coupling the domain to net/http.
package requestctx

import "context"

type ctxKey struct{}

type Info struct {
	RequestID string
	ClientIP  string
}

func With(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

func From(ctx context.Context) Info {
	info, _ := ctx.Value(ctxKey{}).(Info)
	return info
}

func GetRequestID(ctx context.Context) string {
	return From(ctx).RequestID
}

func GetClientIP(ctx context.Context) string {
	return From(ctx).ClientIP
}
