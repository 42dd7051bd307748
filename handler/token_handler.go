package handler

import (
	"encoding/json"
	"net/http"
	"oauth2-token-store/common"
	"oauth2-token-store/logger"
	"oauth2-token-store/model"
	"oauth2-token-store/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TokenHandler struct {
	service *service.TokenService
}

func NewTokenHandler(service *service.TokenService) *TokenHandler {
	return &TokenHandler{service: service}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// StoreToken godoc
// @Summary      Store an issued token pair
// @Description  Persists fingerprints of a newly issued access token and optional refresh token.
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        request  body      model.StoreTokenRequest  true  "Issued token pair"
// @Success      201      {object}  model.TokenRecord
// @Failure      400      {object}  common.AppError
// @Failure      409      {object}  common.AppError
// @Failure      503      {object}  common.AppError
// @Router       /tokens [post]
func (h *TokenHandler) StoreToken(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.StoreTokenRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithFields(logrus.Fields{
		"client_id": req.ClientID,
		"scopes":    req.Scopes,
	}).Info("Store token request received")

	record, err := h.service.StoreToken(r.Context(), req)
	if err != nil {
		return common.FromDomainError(err)
	}

	writeJSON(w, http.StatusCreated, record)
	return nil
}

// Introspect godoc
// @Summary      Look up a token
// @Description  Returns the record of a valid token. Unknown, expired and revoked tokens all yield 404.
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        request  body      model.TokenRequest  true  "Token and optional type hint"
// @Success      200      {object}  model.TokenRecord
// @Failure      404      {object}  common.AppError
// @Failure      503      {object}  common.AppError
// @Router       /tokens/introspect [post]
func (h *TokenHandler) Introspect(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.TokenRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	record, err := h.service.Lookup(r.Context(), req.Token, req.TokenTypeHint)
	if err != nil {
		return common.FromDomainError(err)
	}
	if record == nil {
		return common.NewAppError(http.StatusNotFound, "Token not found", nil)
	}

	writeJSON(w, http.StatusOK, record)
	return nil
}

// Revoke godoc
// @Summary      Revoke a token
// @Description  Revokes the grant owning the token. Revoking via a refresh token also revokes its access token.
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        request  body      model.TokenRequest  true  "Token and optional type hint"
// @Success      200      {object}  model.RevokeResponse
// @Failure      503      {object}  common.AppError
// @Router       /tokens/revoke [post]
func (h *TokenHandler) Revoke(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.TokenRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	changed, err := h.service.Revoke(r.Context(), req.Token, req.TokenTypeHint)
	if err != nil {
		return common.FromDomainError(err)
	}

	writeJSON(w, http.StatusOK, model.RevokeResponse{Revoked: changed})
	return nil
}

// RevokeUser godoc
// @Summary      Revoke all tokens of a user
// @Tags         admin
// @Produce      json
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  map[string]int64
// @Failure      400      {object}  common.AppError
// @Router       /admin/users/{user_id}/revoke [post]
func (h *TokenHandler) RevokeUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid user ID", nil)
	}

	n, err := h.service.RevokeUser(r.Context(), userID)
	if err != nil {
		return common.FromDomainError(err)
	}

	writeJSON(w, http.StatusOK, map[string]int64{"revoked": n})
	return nil
}

// Cleanup godoc
// @Summary      Delete expired and revoked tokens
// @Tags         admin
// @Produce      json
// @Success      200  {object}  model.CleanupResponse
// @Failure      503  {object}  common.AppError
// @Router       /admin/cleanup [post]
func (h *TokenHandler) Cleanup(w http.ResponseWriter, r *http.Request) *common.AppError {
	n, err := h.service.Cleanup(r.Context())
	if err != nil {
		return common.FromDomainError(err)
	}

	writeJSON(w, http.StatusOK, model.CleanupResponse{Deleted: n})
	return nil
}
