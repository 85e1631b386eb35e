package auth

import (
	"context"
	"net/http"
	"strings"

	"bullfinance/internal/log"
)

type claimsKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

// Middleware requires a valid bearer token. onFail writes the 401 response.
func (ti *TokenIssuer) Middleware(onFail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				onFail(w, r, ErrInvalidToken)
				return
			}
			claims, err := ti.Parse(strings.TrimSpace(token))
			if err != nil {
				onFail(w, r, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			l := log.FromContext(ctx).With(log.FieldCompanyID, claims.CompanyID, log.FieldUserID, claims.UserID)
			ctx = log.WithContext(ctx, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
