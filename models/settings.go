package models

import (
	"encoding/json"
	"time"
)

// Ключи настроек в хранилище.
const (
	SettingCustomGameTypes = "custom_game_types"
	SettingAnalytics       = "analytics"
)

type Settings map[string]json.RawMessage

// Backup is a full export of the stored scoreboard data.
type Backup struct {
	CurrentGame *Match          `json:"current_game"`
	History     []HistoryRecord `json:"game_history"`
	Settings    Settings        `json:"settings"`
	ExportedAt  time.Time       `json:"exported_at"`
}

type StorageInfo struct {
	CurrentGameSize int    `json:"current_game_size"`
	HistorySize     int    `json:"history_size"`
	SettingsSize    int    `json:"settings_size"`
	TotalSize       int    `json:"total_size"`
	TotalFormatted  string `json:"total_formatted"`
	HistoryCount    int    `json:"history_count"`
}
