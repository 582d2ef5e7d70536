package common

import "errors"

// Общие ошибки для всех репозиториев
var (
	ErrNotFound = errors.New("entity not found")
	ErrConflict = errors.New("entity state conflict")
)
