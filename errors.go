package libkv

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a StorageError.
type ErrorKind uint8

const (
	KeyEncode ErrorKind = iota + 1
	KeyDecode
	ValueEncode
	ValueDecode
	Backend
)

func (k ErrorKind) String() string {
	switch k {
	case KeyEncode:
		return "key encode"
	case KeyDecode:
		return "key decode"
	case ValueEncode:
		return "value encode"
	case ValueDecode:
		return "value decode"
	case Backend:
		return "backend"
	default:
		return fmt.Sprintf("error kind(%d)", uint8(k))
	}
}

// StorageError is returned by container operations. Err is the cause and
// Key the raw key involved, when known.
type StorageError struct {
	Kind ErrorKind
	Key  []byte
	Err  error
}

func (e *StorageError) Error() string {
	if e.Key != nil {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func wrapErr(kind ErrorKind, rawKey []byte, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: kind, Key: append([]byte(nil), rawKey...), Err: err}
}

// IsKind reports whether err is a StorageError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Kind == kind
}

var (
	// ErrNotFound is returned by Item.Load when nothing is stored.
	ErrNotFound = errors.New("libkv: not found")
	// ErrIndexOutOfRange is returned when writing past the end of a List.
	ErrIndexOutOfRange = errors.New("libkv: index out of range")
)
