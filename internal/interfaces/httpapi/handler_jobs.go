package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/scorelinehq/scorefeed/internal/usecase"
)

type runCycleJobRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

type refreshCatalogJobRequest struct {
	Sport string `json:"sport" validate:"omitempty,lowercase,max=50"`
}

func (h *Handler) RunFetchCycleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFetchCycleJob")
	defer span.End()

	var req runCycleJobRequest
	if err := decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.orchestrator.RunCycle(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run fetch cycle job failed", "reason", req.Reason, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cycleToDTO(stats))
}

func (h *Handler) RefreshCatalogJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshCatalogJob")
	defer span.End()

	var req refreshCatalogJobRequest
	if err := decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if sport := strings.TrimSpace(req.Sport); sport != "" {
		if err := h.catalogService.Refresh(ctx, sport); err != nil {
			h.logger.WarnContext(ctx, "refresh catalog job failed", "sport", sport, "error", err)
			writeError(ctx, w, err)
			return
		}

		writeSuccess(ctx, w, http.StatusOK, map[string]string{"sport": sport, "status": "refreshed"})
		return
	}

	stats, err := h.catalogService.RefreshAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh catalog job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

// decodeJobRequest reads an optional JSON body. An empty body leaves the
// target at its zero value.
func decodeJobRequest(r *http.Request, target any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
