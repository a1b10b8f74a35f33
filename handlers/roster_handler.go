package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
	"github.com/go-chi/chi/v5"
)

type RosterHandler struct {
	session *services.Session
}

func NewRosterHandler(session *services.Session) *RosterHandler {
	return &RosterHandler{session: session}
}

type setModeInput struct {
	Mode models.GameMode `json:"mode"`
}

type playerInput struct {
	Name string `json:"name"`
}

type playersInput struct {
	Players []string `json:"players"`
}

type reorderInput struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// GetRoster godoc
// @Summary Текущий состав
// @Tags roster
// @Produce json
// @Success 200 {object} map[string]interface{} "Режим, игроки, команды и готовность"
// @Router /roster [get]
func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()
	response := jsonResponse{
		"mode":      snap.Mode,
		"players":   snap.Players,
		"teams":     snap.Teams,
		"readiness": snap.Readiness,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetMode godoc
// @Summary Переключить режим (individual/team)
// @Tags roster
// @Accept json
// @Produce json
// @Param input body setModeInput true "Режим"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /roster/mode [put]
func (h *RosterHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	var input setModeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.session.SetMode(input.Mode); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.GetRoster(w, r)
}

// AddPlayer godoc
// @Summary Добавить игрока
// @Tags roster
// @Accept json
// @Produce json
// @Param input body playerInput true "Имя игрока"
// @Success 201 {object} map[string]interface{} "Обновлённый список игроков"
// @Failure 409 {object} map[string]string "Имя уже занято"
// @Failure 422 {object} map[string]string "Недопустимое имя или состав заполнен"
// @Security BearerAuth
// @Router /roster/players [post]
func (h *RosterHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var input playerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.session.AddPlayer(input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetPlayers godoc
// @Summary Заменить весь список игроков
// @Tags roster
// @Accept json
// @Produce json
// @Param input body playersInput true "Имена игроков"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /roster/players [put]
func (h *RosterHandler) SetPlayers(w http.ResponseWriter, r *http.Request) {
	var input playersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.session.SetPlayers(input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemovePlayer godoc
// @Summary Удалить игрока по имени
// @Tags roster
// @Produce json
// @Param player path string true "Имя игрока"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /roster/players/{player} [delete]
func (h *RosterHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	name, err := stringURLParam(r, "player")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.session.RemovePlayer(name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemovePlayerAt godoc
// @Summary Удалить игрока по позиции
// @Tags roster
// @Produce json
// @Param index path int true "Позиция (с нуля)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /roster/players/index/{index} [delete]
func (h *RosterHandler) RemovePlayerAt(w http.ResponseWriter, r *http.Request) {
	index, err := intURLParam(r, "index")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.session.RemovePlayerAt(index)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RenamePlayer godoc
// @Summary Переименовать игрока
// @Tags roster
// @Accept json
// @Produce json
// @Param player path int true "Позиция (с нуля)"
// @Param input body playerInput true "Новое имя"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /roster/players/{player} [put]
func (h *RosterHandler) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	index, err := intURLParam(r, "player")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input playerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.session.RenamePlayer(index, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReorderPlayer godoc
// @Summary Переместить игрока
// @Tags roster
// @Accept json
// @Produce json
// @Param input body reorderInput true "Откуда и куда"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /roster/players/reorder [post]
func (h *RosterHandler) ReorderPlayer(w http.ResponseWriter, r *http.Request) {
	var input reorderInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.session.ReorderPlayer(input.From, input.To)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Readiness godoc
// @Summary Можно ли начинать игру
// @Tags roster
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /roster/ready [get]
func (h *RosterHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"readiness": h.session.Readiness()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func teamSideParam(r *http.Request) (models.TeamSide, error) {
	side, ok := models.ParseTeamSide(chi.URLParam(r, "side"))
	if !ok {
		return "", errors.New("team side must be A or B")
	}
	return side, nil
}

// SetTeamName godoc
// @Summary Переименовать команду
// @Tags roster
// @Accept json
// @Produce json
// @Param side path string true "A или B"
// @Param input body playerInput true "Название команды"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /roster/teams/{side}/name [put]
func (h *RosterHandler) SetTeamName(w http.ResponseWriter, r *http.Request) {
	side, err := teamSideParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input playerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teams, err := h.session.SetTeamName(side, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddTeamMember godoc
// @Summary Добавить игрока в команду
// @Tags roster
// @Accept json
// @Produce json
// @Param side path string true "A или B"
// @Param input body playerInput true "Имя игрока"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /roster/teams/{side}/players [post]
func (h *RosterHandler) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	side, err := teamSideParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input playerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teams, err := h.session.AddTeamMember(side, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveTeamMember godoc
// @Summary Убрать игрока из команды
// @Tags roster
// @Produce json
// @Param side path string true "A или B"
// @Param name path string true "Имя игрока"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /roster/teams/{side}/players/{name} [delete]
func (h *RosterHandler) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	side, err := teamSideParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	name, err := stringURLParam(r, "name")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teams, err := h.session.RemoveTeamMember(side, name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearRoster godoc
// @Summary Очистить состав
// @Tags roster
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /roster [delete]
func (h *RosterHandler) ClearRoster(w http.ResponseWriter, r *http.Request) {
	h.session.ClearRoster()
	h.GetRoster(w, r)
}
