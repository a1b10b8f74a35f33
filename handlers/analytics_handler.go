package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/scoreboard/analytics"
)

const visitorCookie = "sb_visitor"

type AnalyticsHandler struct {
	tracker *analytics.Tracker
}

func NewAnalyticsHandler(tracker *analytics.Tracker) *AnalyticsHandler {
	return &AnalyticsHandler{tracker: tracker}
}

// GetAnalytics godoc
// @Summary Демонстрационные счётчики посещений и игр
// @Description Значения в поле simulated сгенерированы и не отражают реальный трафик.
// @Tags analytics
// @Produce json
// @Success 200 {object} analytics.Report
// @Router /analytics [get]
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"analytics": h.tracker.Report()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordVisit godoc
// @Summary Засчитать посещение
// @Tags analytics
// @Produce json
// @Success 201 {object} analytics.Visit
// @Router /analytics/visit [post]
func (h *AnalyticsHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	_, err := r.Cookie(visitorCookie)
	known := err == nil

	visit := h.tracker.RecordVisit(known)
	if !known {
		http.SetCookie(w, &http.Cookie{
			Name:     visitorCookie,
			Value:    visit.SessionID,
			Path:     "/",
			Expires:  time.Now().AddDate(1, 0, 0),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"visit": visit}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
