package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eeviriyi/site/internal/device"
	"github.com/eeviriyi/site/internal/log"
)

// DeviceStore is the persistence the device telemetry endpoints need.
type DeviceStore interface {
	Upsert(ctx context.Context, stat device.NewStat) (*device.Stat, error)
	ListRecent(ctx context.Context) ([]device.Stat, error)
}

// DeviceStatsHandler handles device telemetry uploads and the recent
// snapshot listing shown on the site.
type DeviceStatsHandler struct {
	store  DeviceStore
	logger log.Logger
}

// NewDeviceStatsHandler creates a device stats handler.
func NewDeviceStatsHandler(store DeviceStore, logger log.Logger) *DeviceStatsHandler {
	return &DeviceStatsHandler{store: store, logger: logger}
}

// RegisterRoutes registers device stats routes on the given mux.
func (h *DeviceStatsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/device-stats", h.upload)
	mux.HandleFunc("GET /api/device-stats", h.recent)
}

func (h *DeviceStatsHandler) upload(w http.ResponseWriter, r *http.Request) {
	var stat device.NewStat
	if err := json.NewDecoder(r.Body).Decode(&stat); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if err := stat.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_STAT", err.Error())
		return
	}

	stored, err := h.store.Upsert(r.Context(), stat)
	if err != nil {
		h.logger.Error("failed to upsert device stats", "device", stat.DeviceName, "error", err)
		writeError(w, http.StatusInternalServerError, "UPLOAD_FAILED", "failed to upload data")
		return
	}
	writeData(w, http.StatusCreated, stored, "Data uploaded successfully")
}

func (h *DeviceStatsHandler) recent(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ListRecent(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch recent device stats", "error", err)
		writeError(w, http.StatusInternalServerError, "FETCH_FAILED", "failed to fetch recent device stats")
		return
	}
	if stats == nil {
		stats = []device.Stat{}
	}
	writeData(w, http.StatusOK, stats, "")
}
