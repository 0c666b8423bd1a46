package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/service"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/pkg/authsdk"
	"github.com/hearthlabs/hearth-auth/pkg/httpx"
	"github.com/hearthlabs/hearth-auth/pkg/slogx"
)

// ClientsHandler exposes the admin API for client registrations.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// HandleCreate godoc
//
//	@Summary		Register a client application
//	@Description	Creates a client registration. Confidential clients receive a generated
//	@Description	secret in the response; it is never retrievable again.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateClientRequest	true	"Client registration"
//	@Success		201		{object}	authsdk.CreateClientResponse
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/clients [post]
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	result, err := h.ClientService.CreateClient(ctx, req.Name, req.RedirectURIs, req.Confidential)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"name and at least one absolute http(s) redirect URI are required").WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("client creation failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.CreateClientResponse{
		Client:       toClientApplication(result.Client),
		ClientSecret: result.ClientSecret,
	})
}

// HandleList godoc
//
//	@Summary	List client applications
//	@Tags		Clients
//	@Produce	json
//	@Success	200	{array}		authsdk.ClientApplication
//	@Failure	401	{object}	authsdk.ErrorResponse
//	@Failure	403	{object}	authsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/clients [get]
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := h.ClientService.ListClients(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("client listing failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	out := make([]authsdk.ClientApplication, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientApplication(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete godoc
//
//	@Summary	Delete a client registration
//	@Tags		Clients
//	@Produce	json
//	@Param		id	path		string	true	"Internal client ID"
//	@Success	204	{string}	string	"deleted"
//	@Failure	401	{object}	authsdk.ErrorResponse
//	@Failure	403	{object}	authsdk.ErrorResponse
//	@Failure	404	{object}	authsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/clients/{id} [delete]
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.ClientService.DeleteClient(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			authsdk.NewOAuth2Error(http.StatusNotFound, authsdk.ErrorCodeInvalidRequest,
				"no such client").WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("client deletion failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateRedirectURIs godoc
//
//	@Summary		Replace a client's redirect URIs
//	@Description	Replaces the registered redirect URI set wholesale.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Internal client ID"
//	@Param			request	body		[]string	true	"Replacement redirect URI set"
//	@Success		204		{string}	string		"updated"
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse
//	@Failure		404		{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/redirect-uris [put]
func (h *ClientsHandler) HandleUpdateRedirectURIs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var uris []string
	if err := json.NewDecoder(r.Body).Decode(&uris); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.ClientService.UpdateRedirectURIs(ctx, r.PathValue("id"), uris); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"redirect URIs must be absolute http(s) URIs without fragments").WriteError(w)
		case errors.Is(err, store.ErrNotFound):
			authsdk.NewOAuth2Error(http.StatusNotFound, authsdk.ErrorCodeInvalidRequest,
				"no such client").WriteError(w)
		default:
			slogx.FromContext(ctx).Error("redirect URI update failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toClientApplication(c domain.Client) authsdk.ClientApplication {
	return authsdk.ClientApplication{
		ID:           c.ID,
		ClientID:     c.ClientID,
		Name:         c.Name,
		RedirectURIs: c.RedirectURIs,
		Active:       c.Active,
		Confidential: c.Confidential(),
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
