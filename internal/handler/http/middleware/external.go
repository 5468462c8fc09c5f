package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/LoosePrince/Huisheen/internal/handler/http/response"
	"github.com/LoosePrince/Huisheen/internal/pkg/token"
)

const externalClaimsKey contextKey = "external_claims"

// ExternalAuth validates a bearer external read-access token and stores its
// claims in the request context.
func ExternalAuth(tokens token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			bearer, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(bearer) == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := tokens.VerifyExternalToken(strings.TrimSpace(bearer))
			if err != nil {
				response.HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), externalClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// ExternalClaimsFromContext returns the claims set by ExternalAuth.
func ExternalClaimsFromContext(ctx context.Context) *token.ExternalClaims {
	claims, _ := ctx.Value(externalClaimsKey).(*token.ExternalClaims)
	return claims
}
