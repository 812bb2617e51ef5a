package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/service"
	"github.com/aussiebroadwan/tokenreg/pkg/httpx"
	"github.com/aussiebroadwan/tokenreg/pkg/tokensdk"
)

type TokensHandler struct {
	TokenService *service.TokenService
}

// HandleIssuePair issues an access/refresh pair
//
//	@Summary		Issue a token pair
//	@Description	Signs an access token ("A<n>") and a refresh token ("R<n>") for the account and persists the refresh token, evicting expired or the oldest rows when the account is at its limit.
//	@Description	Remote-provider accounts return the provider's response, including any extra fields.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			account	path		string							true	"Account id"
//	@Param			request	body		tokensdk.IssueTokenPairRequest	false	"Extra claims"
//	@Success		200		{object}	tokensdk.TokenPairResponse		"Issued pair"
//	@Failure		400		{object}	tokensdk.ErrorResponse			"Malformed body"
//	@Failure		401		{object}	tokensdk.ErrorResponse			"Missing or invalid admin key"
//	@Failure		404		{object}	tokensdk.ErrorResponse			"Account not registered"
//	@Failure		429		{object}	tokensdk.ErrorResponse			"Rate limit exceeded"
//	@Failure		502		{object}	tokensdk.ErrorResponse			"Remote provider failed"
//	@Security		AdminKey
//	@Router			/v1/accounts/{account}/tokens [post].
func (h *TokensHandler) HandleIssuePair(w http.ResponseWriter, r *http.Request) {
	var req tokensdk.IssueTokenPairRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Malformed request body")
		return
	}

	pair, err := h.TokenService.IssueTokenPair(r.Context(), r.PathValue("account"), req.Claims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleIssueToken issues a standalone token
//
//	@Summary		Issue a single token
//	@Description	Signs a token whose kid is the nature letter. Nothing is persisted. Only "iss" is taken from the account claims.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			account	path		string						true	"Account id"
//	@Param			nature	path		string						true	"Upper-case nature letter other than R"
//	@Param			request	body		tokensdk.IssueTokenRequest	true	"Lifetime and claims"
//	@Success		200		{object}	tokensdk.TokenResponse		"Issued token"
//	@Failure		400		{object}	tokensdk.ErrorResponse		"Invalid nature, duration or grace interval"
//	@Failure		401		{object}	tokensdk.ErrorResponse		"Missing or invalid admin key"
//	@Failure		404		{object}	tokensdk.ErrorResponse		"Account not registered"
//	@Security		AdminKey
//	@Router			/v1/accounts/{account}/tokens/{nature} [post].
func (h *TokensHandler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokensdk.IssueTokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Malformed request body")
		return
	}

	token, err := h.TokenService.IssueToken(r.Context(),
		r.PathValue("account"),
		r.PathValue("nature"),
		seconds(req.Duration),
		seconds(req.GraceInterval),
		req.Claims,
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokensdk.TokenResponse{Token: token})
}
