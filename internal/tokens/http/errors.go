package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/pkg/httpx"
	"github.com/aussiebroadwan/tokenreg/pkg/slogx"
	"github.com/aussiebroadwan/tokenreg/pkg/tokensdk"
)

// writeServiceError maps a domain failure to a status and a fixed message.
// The wrapped detail is logged, never sent.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		httpx.WriteError(w, http.StatusNotFound, tokensdk.ErrorCodeAccountNotFound, "Account is not registered")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		httpx.WriteError(w, http.StatusConflict, tokensdk.ErrorCodeAlreadyRegistered, "Account is already registered")
	case errors.Is(err, domain.ErrInvalidParameter):
		log.Info("rejected request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, tokensdk.ErrorCodeInvalidRequest, "Invalid request parameters")
	case errors.Is(err, domain.ErrVerificationFailure), errors.Is(err, domain.ErrMissingAuthorization):
		httpx.WriteError(w, http.StatusUnauthorized, tokensdk.ErrorCodeInvalidToken, "Token could not be verified")
	case errors.Is(err, domain.ErrRemoteProviderFailure):
		log.Error("remote provider failed", "err", err)
		httpx.WriteError(w, http.StatusBadGateway, tokensdk.ErrorCodeRemoteProviderFailed, "Remote token provider failed")
	default:
		log.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, tokensdk.ErrorCodeServerError, "Internal server error")
	}
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusBadRequest, tokensdk.ErrorCodeInvalidRequest, desc)
}
