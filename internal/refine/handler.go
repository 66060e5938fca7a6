package refine

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/utilities"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Refine reads `prompt` from a JSON body or form/query values.
func (h *Handler) Refine(w http.ResponseWriter, r *http.Request) {
	p, err := utilities.ReadParams(r)
	if err != nil {
		h.logger.Debugw("invalid refine payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, h.svc.Refine(r.Context(), p.Value("prompt")))
}
