package handlers

import (
	"context"
	"net/http"

	"github.com/andrewpaige1/accent-api/airtable"
	"github.com/andrewpaige1/accent-api/funnel"
	"github.com/andrewpaige1/accent-api/utils"
	"github.com/sirupsen/logrus"
)

// FunnelSource is implemented by *funnel.Service.
type FunnelSource interface {
	Days(ctx context.Context, start, end string) ([]airtable.Record, error)
	Load(ctx context.Context, start, end string) (*funnel.Report, error)
}

type InternalStatsHandler struct {
	Funnel FunnelSource
}

func dateRange(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if start == "" || end == "" {
		utils.WriteError(w, http.StatusBadRequest, "Start and end dates are required.")
		return "", "", false
	}
	return start, end, true
}

// GET /api/internalstats/loadrange?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *InternalStatsHandler) LoadRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	days, err := h.Funnel.Days(r.Context(), start, end)
	if err != nil {
		writeUpstreamError(w, "LoadRange", err)
		return
	}
	if days == nil {
		days = []airtable.Record{}
	}

	utils.WriteJSON(w, http.StatusOK, days)
}

// GET /api/internalstats/funnel?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *InternalStatsHandler) GetFunnel(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	report, err := h.Funnel.Load(r.Context(), start, end)
	if err != nil {
		logrus.Errorf("GetFunnel: %s..%s: %v", start, end, err)
		utils.WriteJSON(w, http.StatusBadGateway, map[string]string{
			"error":   "Failed to load funnel data",
			"details": err.Error(),
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, report)
}
