package user

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/utilities"
)

// Handler exposes HTTP endpoints for the authenticated account.
// Routes must be mounted behind auth.RequireAuth.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	id, err := h.currentUserID(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	info, err := h.svc.GetInfo(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, info)
}

// UpdateProfile accepts name, email, bio and location; each is optional.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := utilities.ReadParams(r)
	if err != nil {
		h.logger.Debugw("invalid profile payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	id, err := h.currentUserID(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	res := h.svc.UpdateProfile(r.Context(), id, entity.ProfileUpdate{
		Name:     p.Ptr("name"),
		Email:    p.Ptr("email"),
		Bio:      p.Ptr("bio"),
		Location: p.Ptr("location"),
	})
	if !res.Success {
		h.logger.Infow("profile not updated", "user_id", id, "reason", res.Message)
	}
	utilities.WriteJSON(w, http.StatusOK, res)
}

// currentUserID resolves the acting account from the verified token. Tokens
// without a uid claim are resolved through their subject email.
func (h *Handler) currentUserID(ctx context.Context) (string, error) {
	ident, ok := auth.IdentityFrom(ctx)
	if !ok {
		return "", errors.New("missing identity")
	}
	if ident.UserID != "" {
		return ident.UserID, nil
	}
	u, err := h.svc.FindByEmail(ctx, ident.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return u.ID, nil
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUserNotFound) {
		h.logger.Warnw("user lookup failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "User not found")
		return
	}
	h.logger.Errorw("error processing request", "err", err)
	utilities.WriteError(w, http.StatusInternalServerError, err.Error())
}
