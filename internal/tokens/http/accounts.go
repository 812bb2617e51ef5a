package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/domain"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/service"
	"github.com/aussiebroadwan/tokenreg/pkg/httpx"
	"github.com/aussiebroadwan/tokenreg/pkg/tokensdk"
)

type AccountsHandler struct {
	Registry *service.Registry
}

// HandleCreate registers an account policy
//
//	@Summary		Register an account
//	@Description	Registers the issuance policy for an account id. Lifetimes are in seconds; access_max_age must be at least 60 and refresh_max_age must exceed it.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body	tokensdk.Account	true	"Account policy"
//	@Success		201
//	@Failure		400	{object}	tokensdk.ErrorResponse	"Invalid policy"
//	@Failure		401	{object}	tokensdk.ErrorResponse	"Missing or invalid admin key"
//	@Failure		409	{object}	tokensdk.ErrorResponse	"Account already registered"
//	@Security		AdminKey
//	@Router			/v1/accounts [post].
func (h *AccountsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req tokensdk.Account
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Malformed request body")
		return
	}

	if err := h.Registry.AddAccount(r.Context(), req.ID, accountFromRequest(req)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// HandleList lists registered account ids
//
//	@Summary		List accounts
//	@Description	Returns the registered account ids in sorted order.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	tokensdk.ListAccountsResponse	"Account ids"
//	@Failure		401	{object}	tokensdk.ErrorResponse			"Missing or invalid admin key"
//	@Security		AdminKey
//	@Router			/v1/accounts [get].
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ids := h.Registry.Accounts()
	if ids == nil {
		ids = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, tokensdk.ListAccountsResponse{Accounts: ids})
}

// HandleGet returns an account policy
//
//	@Summary		Get an account
//	@Description	Returns a copy of the registered policy.
//	@Tags			Accounts
//	@Produce		json
//	@Param			account	path		string				true	"Account id"
//	@Success		200		{object}	tokensdk.Account	"Account policy"
//	@Failure		401		{object}	tokensdk.ErrorResponse	"Missing or invalid admin key"
//	@Failure		404		{object}	tokensdk.ErrorResponse	"Account not registered"
//	@Security		AdminKey
//	@Router			/v1/accounts/{account} [get].
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("account")

	acct, err := h.Registry.GetAccount(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountToResponse(id, acct))
}

// HandleDelete removes an account
//
//	@Summary		Remove an account
//	@Description	Forgets the policy and deletes every persisted token of the account. Removing an unknown account is not an error.
//	@Tags			Accounts
//	@Produce		json
//	@Param			account	path		string							true	"Account id"
//	@Success		200		{object}	tokensdk.RemoveAccountResponse	"Whether the account existed"
//	@Failure		401		{object}	tokensdk.ErrorResponse			"Missing or invalid admin key"
//	@Failure		500		{object}	tokensdk.ErrorResponse			"Tokens could not be deleted"
//	@Security		AdminKey
//	@Router			/v1/accounts/{account} [delete].
func (h *AccountsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Registry.RemoveAccount(r.Context(), r.PathValue("account"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokensdk.RemoveAccountResponse{Removed: removed})
}

func accountFromRequest(req tokensdk.Account) domain.Account {
	return domain.Account{
		Claims:         req.Claims,
		AccessMaxAge:   seconds(req.AccessMaxAge),
		RefreshMaxAge:  seconds(req.RefreshMaxAge),
		GraceInterval:  seconds(req.GraceInterval),
		TokenLimit:     req.TokenLimit,
		ProviderURL:    req.ProviderURL,
		RequestTimeout: seconds(req.RequestTimeout),
	}
}

func accountToResponse(id string, acct domain.Account) tokensdk.Account {
	return tokensdk.Account{
		ID:             id,
		Claims:         acct.Claims,
		AccessMaxAge:   int64(acct.AccessMaxAge / time.Second),
		RefreshMaxAge:  int64(acct.RefreshMaxAge / time.Second),
		GraceInterval:  int64(acct.GraceInterval / time.Second),
		TokenLimit:     acct.TokenLimit,
		ProviderURL:    acct.ProviderURL,
		RequestTimeout: int64(acct.RequestTimeout / time.Second),
	}
}

func seconds(n int64) time.Duration { return time.Duration(n) * time.Second }
