package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/sandbox-tools/internal/apperror"
	"github.com/sakif/sandbox-tools/internal/auth"
)

// TokenHandler exchanges client credentials for an access token.
type TokenHandler struct {
	clients auth.Clients
	tokens  *auth.TokenService
	logger  *slog.Logger
}

func NewTokenHandler(clients auth.Clients, tokens *auth.TokenService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		clients: clients,
		tokens:  tokens,
		logger:  logger,
	}
}

type tokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HandleToken issues a bearer token.
//
// HTTP: POST /auth/token {"clientId": "...", "clientSecret": "..."}
func (h *TokenHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, 4096, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		writeError(w, apperror.ValidationFailed("clientId", "clientId and clientSecret are required"))
		return
	}

	if err := h.clients.Authenticate(req.ClientID, req.ClientSecret); err != nil {
		h.logger.Warn("client authentication failed", slog.String("client", req.ClientID))
		writeError(w, err)
		return
	}

	token, expires, err := h.tokens.Generate(req.ClientID)
	if err != nil {
		h.logger.Error("failed to issue token", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	h.logger.Info("issued access token", slog.String("client", req.ClientID))
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expires})
}
