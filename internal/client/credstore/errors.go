package credstore

import "fmt"

// StorageError reports a failed credential store operation.
// It is never fatal for the client: the Store degrades instead.
type StorageError struct {
	Op    string // "get", "set", "delete", "set_pair", "delete_pair", "open"
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	msg := "credential store " + e.Op
	if e.Key != "" {
		msg += fmt.Sprintf("[%s]", e.Key)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}
