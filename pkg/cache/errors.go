package cache

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// backendError tags a failed backend call. Deadline and connection failures
// become network errors so callers can fall back to fetching.
func backendError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	code := errors.ErrCodeInternal
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		code = errors.ErrCodeTimeout
	case backend != "file":
		code = errors.ErrCodeNetwork
	}
	return errors.Wrap(code, err, "%s cache %s", backend, op)
}
