package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/utilities"
)

// Handler exposes HTTP endpoints for login / logout.
type Handler struct {
	svc    *AuthService
	logger *zap.SugaredLogger
}

func NewHandler(svc *AuthService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Login reads username/password from a JSON body or form/query values.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	p, err := utilities.ReadParams(r)
	if err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	resp, err := h.svc.Login(r.Context(), p.Value("username"), p.Value("password"))
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			h.logger.Debugw("login failed", "err", err)
			utilities.WriteUnauthorized(w, msgBadCredentials)
			return
		}
		h.logger.Errorw("login error", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utilities.WriteJSON(w, http.StatusOK, resp)
}

// Logout revokes the token in the Authorization header.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.Logout(r.Context(), r.Header.Get("Authorization"))
	utilities.WriteJSON(w, http.StatusOK, resp)
}
