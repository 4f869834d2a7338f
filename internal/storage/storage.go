// Package storage содержит общие для реализаций хранилища ошибки.
// Реализации лежат в подпакетах: memory (таблицы в памяти процесса)
// и postgresql (таблицы в PostgreSQL).
package storage

import "errors"

var (
	// ErrNotFound строка с таким id не найдена.
	ErrNotFound = errors.New("row not found")
	// ErrDuplicate строка с таким id уже существует.
	ErrDuplicate = errors.New("duplicate row id")
)
