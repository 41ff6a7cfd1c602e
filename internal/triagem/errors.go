package triagem

import (
	"errors"
	"fmt"
)

// ErrRejected is returned when the API answers 200 but reports the screening as failed.
var ErrRejected = errors.New("screening rejected by api")

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status: %s", e.Status)
	}
	return fmt.Sprintf("bad status: %s - %s", e.Status, e.Body)
}
