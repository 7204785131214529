package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const operatorIDKey contextKey = "operatorID"

// OperatorMiddleware copies the X-Operator-Id header into the request
// context so audit trails can attribute writes.
func OperatorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operatorID := r.Header.Get("X-Operator-Id")
		ctx := context.WithValue(r.Context(), operatorIDKey, operatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OperatorID returns the operator identifier from the context, or empty.
func OperatorID(ctx context.Context) string {
	if v, ok := ctx.Value(operatorIDKey).(string); ok {
		return v
	}
	return ""
}
