package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
)

type StorageHandler struct {
	storage *services.StorageService
	backups services.BackupService
	session *services.Session
}

func NewStorageHandler(storage *services.StorageService, backups services.BackupService, session *services.Session) *StorageHandler {
	return &StorageHandler{storage: storage, backups: backups, session: session}
}

// GetInfo godoc
// @Summary Объём хранимых данных
// @Tags storage
// @Produce json
// @Success 200 {object} models.StorageInfo
// @Router /storage/info [get]
func (h *StorageHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info := h.storage.Info(r.Context())
	if info == nil {
		serverErrorResponse(w, r, errors.New("storage info unavailable"))
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"info": info}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Export godoc
// @Summary Выгрузить все данные одним JSON-файлом
// @Tags storage
// @Produce json
// @Success 200 {object} models.Backup
// @Router /storage/export [get]
func (h *StorageHandler) Export(w http.ResponseWriter, r *http.Request) {
	backup, err := h.storage.Export(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="scoreboard-backup-%s.json"`, backup.ExportedAt.Format("2006-01-02")))
	if err := writeJSON(w, http.StatusOK, backup, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Import godoc
// @Summary Загрузить ранее выгруженные данные
// @Tags storage
// @Accept json
// @Produce json
// @Param input body models.Backup true "Выгрузка"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /storage/import [post]
func (h *StorageHandler) Import(w http.ResponseWriter, r *http.Request) {
	var backup models.Backup
	if err := readJSON(w, r, &backup); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.storage.Import(r.Context(), &backup); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	restored := h.session.Restore(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"imported": true, "match_restored": restored}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearAll godoc
// @Summary Удалить все данные
// @Tags storage
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /storage [delete]
func (h *StorageHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	ok := h.storage.ClearAll(r.Context())
	h.session.NewGame(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"cleared": ok}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type restoreInput struct {
	Key string `json:"key"`
}

// CreateBackup godoc
// @Summary Сохранить резервную копию в объектное хранилище
// @Tags storage
// @Produce json
// @Success 201 {object} services.BackupInfo
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /backups [post]
func (h *StorageHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	info, err := h.backups.Upload(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"backup": info}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RestoreBackup godoc
// @Summary Восстановить данные из резервной копии
// @Tags storage
// @Accept json
// @Produce json
// @Param input body restoreInput true "Ключ объекта"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /backups/restore [post]
func (h *StorageHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	var input restoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.Key) == "" {
		failedValidationResponse(w, r, map[string]string{"key": "must be provided"})
		return
	}
	backup, err := h.backups.Restore(r.Context(), input.Key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	restored := h.session.Restore(r.Context())
	response := jsonResponse{
		"restored":       true,
		"exported_at":    backup.ExportedAt,
		"history_count":  len(backup.History),
		"match_restored": restored,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
