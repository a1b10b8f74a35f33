package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/scoreboard/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type scorekeeperLoginInput struct {
	PIN string `json:"pin"`
}

// LoginScorekeeper godoc
// @Summary Получить токен счётчика по PIN-коду
// @Tags auth
// @Accept json
// @Produce json
// @Param input body scorekeeperLoginInput true "PIN"
// @Success 200 {object} map[string]interface{} "token и expires_at"
// @Failure 401 {object} map[string]string "Неверный PIN"
// @Failure 503 {object} map[string]string "Защита отключена"
// @Router /auth/scorekeeper [post]
func (h *AuthHandler) LoginScorekeeper(w http.ResponseWriter, r *http.Request) {
	var input scorekeeperLoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PIN == "" {
		badRequestResponse(w, r, errors.New("pin is required"))
		return
	}

	token, expires, err := h.authService.Login(input.PIN)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	response := jsonResponse{
		"token":      token,
		"expires_at": expires.UTC(),
		"role":       services.RoleScorekeeper,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
