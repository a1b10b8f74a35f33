package handlers

import (
	"net/http"

	"github.com/Dosada05/scoreboard/services"
)

type GameTypeHandler struct {
	gameTypes services.GameTypeService
}

func NewGameTypeHandler(gameTypes services.GameTypeService) *GameTypeHandler {
	return &GameTypeHandler{gameTypes: gameTypes}
}

// ListGameTypes godoc
// @Summary Встроенные и пользовательские виды игр
// @Tags game-types
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /game-types [get]
func (h *GameTypeHandler) ListGameTypes(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"game_types": h.gameTypes.List(r.Context())}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateGameType godoc
// @Summary Добавить пользовательский вид игры
// @Tags game-types
// @Accept json
// @Produce json
// @Param input body services.CreateGameTypeInput true "Название, счёт до победы, отрыв"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Совпадает со встроенным видом"
// @Security BearerAuth
// @Router /game-types [post]
func (h *GameTypeHandler) CreateGameType(w http.ResponseWriter, r *http.Request) {
	var input services.CreateGameTypeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	gt, err := h.gameTypes.AddCustom(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game_type": gt}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
