package implementation

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
)

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// storeErr wraps a storage failure in the ErrStoreUnavailable taxonomy while
// keeping the underlying cause for diagnostics.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", espmodels.ErrStoreUnavailable, op, err)
}
