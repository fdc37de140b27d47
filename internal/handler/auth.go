package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/auth"
	"github.com/eventnav/program-service/internal/repository"
)

// AuthHandler serves the identity endpoints: the Telegram initData
// exchange and the admin login.
type AuthHandler struct {
	validator *auth.TelegramValidator
	users     *repository.UserRepository
	admin     *auth.AdminAuth
	log       *zap.Logger
}

func NewAuthHandler(validator *auth.TelegramValidator, users *repository.UserRepository, admin *auth.AdminAuth, log *zap.Logger) *AuthHandler {
	return &AuthHandler{validator: validator, users: users, admin: admin, log: log}
}

// Telegram handles POST /auth/telegram. It validates the WebApp initData
// and returns the upserted user.
func (h *AuthHandler) Telegram(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InitData string `json:"init_data"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	tgUser, err := h.validator.Validate(req.InitData)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid init data")
		return
	}
	user, err := h.users.UpsertByTelegram(r.Context(), tgUser.ID, tgUser.Username, tgUser.FirstName, tgUser.LastName)
	if err != nil {
		h.log.Error("user upsert failed", zap.Int64("telegram_id", tgUser.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Login handles POST /admin/login and issues a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	token, err := h.admin.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Me handles GET /me. TelegramAuth has already upserted the user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}
