package handlers

import (
	"net/http"

	"github.com/Dosada05/scoreboard/services"
)

type MatchHandler struct {
	session *services.Session
}

func NewMatchHandler(session *services.Session) *MatchHandler {
	return &MatchHandler{session: session}
}

type scoreInput struct {
	Index *int `json:"index"`
	Delta *int `json:"delta"`
}

// GetMatch godoc
// @Summary Текущий матч со статусом, лидером и статистикой
// @Tags match
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /match [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()
	response := jsonResponse{
		"status": snap.Status,
		"match":  snap.Match,
		"leader": snap.Leader,
		"stats":  snap.Stats,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartMatch godoc
// @Summary Начать игру с текущим составом
// @Tags match
// @Accept json
// @Produce json
// @Param input body services.ConfigRequest true "Вид игры и необязательные переопределения"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Недопустимая конфигурация или состав не готов"
// @Security BearerAuth
// @Router /match [post]
func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	var input services.ConfigRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.session.StartGame(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateScore godoc
// @Summary Изменить счёт участника
// @Tags match
// @Accept json
// @Produce json
// @Param input body scoreInput true "Индекс участника и приращение"
// @Success 200 {object} services.ScoreUpdate
// @Failure 400 {object} map[string]string "Индекс вне диапазона"
// @Failure 409 {object} map[string]string "Матч не активен"
// @Failure 422 {object} map[string]string "Счёт стал бы отрицательным"
// @Security BearerAuth
// @Router /match/score [post]
func (h *MatchHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	problems := map[string]string{}
	if input.Index == nil {
		problems["index"] = "must be provided"
	}
	if input.Delta == nil {
		problems["delta"] = "must be provided"
	}
	if len(problems) > 0 {
		failedValidationResponse(w, r, problems)
		return
	}

	update, err := h.session.UpdateScore(r.Context(), *input.Index, *input.Delta)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"update": update}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetScores godoc
// @Summary Обнулить счёт и продолжить с теми же участниками
// @Tags match
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Нет матча"
// @Security BearerAuth
// @Router /match/reset [post]
func (h *MatchHandler) ResetScores(w http.ResponseWriter, r *http.Request) {
	match, err := h.session.ResetScores(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// NewGame godoc
// @Summary Сбросить матч и состав
// @Tags match
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /match/new [post]
func (h *MatchHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	h.session.NewGame(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"state": h.session.Snapshot()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetLeader godoc
// @Summary Текущий лидер
// @Tags match
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /match/leader [get]
func (h *MatchHandler) GetLeader(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"leader": h.session.Leader()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStats godoc
// @Summary Статистика текущей игры
// @Tags match
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /match/stats [get]
func (h *MatchHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": h.session.Stats()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
