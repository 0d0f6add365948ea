package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument wraps input validation failures
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownAssetType is returned when a type is not registered in the target allocation
	ErrUnknownAssetType = errors.New("unknown asset type")
)

// ConfigurationError reports an eligible asset whose type has no target configured.
// Callers should block rebalance display until the configuration is fixed.
type ConfigurationError struct {
	Type AssetType
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("asset type %q has no target configured", e.Type)
}
