package schema

import (
	"fmt"

	"github.com/bonesdao/onboarding/internal/domain"
)

// errInvalidRow reports a row that decoded but violates the model
func errInvalidRow(model, reason string) error {
	return fmt.Errorf("%w: invalid %s row: %s", domain.ErrPersistence, model, reason)
}
