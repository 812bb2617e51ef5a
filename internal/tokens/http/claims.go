package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenreg/pkg/httpx"
	"github.com/aussiebroadwan/tokenreg/pkg/tokensdk"
)

type ClaimsHandler struct{}

// ServeHTTP returns the claims of the caller's bearer token
//
//	@Summary		Verify a bearer token
//	@Description	Verifies the signature, expiry and not-before of the bearer token and echoes its claims.
//	@Tags			Tokens
//	@Produce		json
//	@Success		200	{object}	tokensdk.ClaimsResponse	"Verified claims"
//	@Failure		401	{object}	tokensdk.ErrorResponse	"Missing or invalid token"
//	@Security		BearerAuth
//	@Router			/v1/claims [get].
func (h *ClaimsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, tokensdk.ErrorCodeInvalidToken, "Token could not be verified")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokensdk.ClaimsResponse{Claims: claims})
}
