package services

import (
	"errors"
	"fmt"
)

// Ошибки валидации, возвращаемые компонентами состава и матча.
// Все они восстановимы: вызывающий показывает причину пользователю.
var (
	ErrInvalidName      = errors.New("invalid name")
	ErrDuplicateName    = errors.New("name already exists")
	ErrCapacityExceeded = errors.New("roster capacity exceeded")
	ErrNotFound         = errors.New("requested resource not found")
	ErrInvalidSetup     = errors.New("invalid game setup")
	ErrInactiveMatch    = errors.New("match is not active")
	ErrIndexOutOfRange  = errors.New("participant index out of range")
	ErrNegativeScore    = errors.New("score cannot be negative")

	ErrNoMatch = fmt.Errorf("%w: no match in progress", ErrInactiveMatch)
)

// Ошибки вспомогательных сервисов.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbidden            = errors.New("operation requires the scorekeeper role")
	ErrAuthDisabled         = errors.New("scorekeeper authentication is not configured")
	ErrBackupsDisabled      = errors.New("backup storage is not configured")
	ErrInvalidBackup        = errors.New("invalid backup payload")
)
