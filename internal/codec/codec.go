// Package codec converts a table between its in-memory rows and the bytes stored
// in the blob store.
package codec

// Codec кодирует и декодирует таблицу целиком.
type Codec[T any] interface {
	Encode(rows []T) ([]byte, error)
	Decode(data []byte) ([]T, error)
	ContentType() string
}
