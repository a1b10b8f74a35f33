package handlers

import (
	"net/http"

	"github.com/Dosada05/scoreboard/services"
)

type HistoryHandler struct {
	storage *services.StorageService
	stats   services.StatsService
}

func NewHistoryHandler(storage *services.StorageService, stats services.StatsService) *HistoryHandler {
	return &HistoryHandler{storage: storage, stats: stats}
}

// GetHistory godoc
// @Summary История завершённых игр (не более 50, новые первыми)
// @Tags history
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /history [get]
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	records := h.storage.GetHistory(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"history": records, "count": len(records)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearHistory godoc
// @Summary Очистить историю
// @Tags history
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /history [delete]
func (h *HistoryHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ok := h.storage.ClearHistory(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"cleared": ok}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetAllPlayerStats godoc
// @Summary Статистика всех игроков из истории
// @Tags history
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /players/stats [get]
func (h *HistoryHandler) GetAllPlayerStats(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": h.stats.AllPlayerStats(r.Context())}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPlayerStats godoc
// @Summary Статистика игрока
// @Tags history
// @Produce json
// @Param name path string true "Имя игрока"
// @Success 200 {object} models.PlayerStats
// @Router /players/{name}/stats [get]
func (h *HistoryHandler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	name, err := stringURLParam(r, "name")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": h.stats.PlayerStats(r.Context(), name)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
