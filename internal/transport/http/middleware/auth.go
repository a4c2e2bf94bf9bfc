package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"hrperf/internal/domain/auth"
)

type ctxKey string

const ctxKeyActor ctxKey = "actor"

// Auth attaches the bearer token's actor to the request context. Requests
// without a valid token pass through unauthenticated.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "bearer") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				slog.Debug("bearer token rejected", "requestId", GetRequestID(r.Context()), "err", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithActor(r.Context(), claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

func GetActor(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(ctxKeyActor).(auth.Actor)
	return actor, ok
}
