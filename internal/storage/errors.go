package storage

import "fmt"

// CorruptStateError indicates the persisted task list could not be decoded.
type CorruptStateError struct {
	Key    string
	Reason string
}

func (e CorruptStateError) Error() string {
	return fmt.Sprintf("stored tasks under %q are unreadable: %s", e.Key, e.Reason)
}
