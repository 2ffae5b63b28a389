package repo

import (
	"errors"
	"slices"
)

// ErrIndexOutOfRange — позиции нет в таблице.
var ErrIndexOutOfRange = errors.New("row index out of range")

// Append возвращает новую таблицу с row в конце. Исходный срез не меняется.
func Append[T any](rows []T, row T) []T {
	out := make([]T, 0, len(rows)+1)
	out = append(out, rows...)
	return append(out, row)
}

// Replace возвращает копию таблицы, где строка i заменена на row.
func Replace[T any](rows []T, i int, row T) ([]T, error) {
	if i < 0 || i >= len(rows) {
		return nil, ErrIndexOutOfRange
	}
	out := slices.Clone(rows)
	out[i] = row
	return out, nil
}

// Remove возвращает копию таблицы без строки i; порядок остальных сохраняется.
func Remove[T any](rows []T, i int) ([]T, error) {
	if i < 0 || i >= len(rows) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]T, 0, len(rows)-1)
	out = append(out, rows[:i]...)
	return append(out, rows[i+1:]...), nil
}
