package risk

import (
	"errors"
	"fmt"
)

// ErrMissingPremium is returned when a record has no PremiumPrice; the
// standardization step is undefined in that case.
var ErrMissingPremium = errors.New("premium price is missing")

// InsufficientDataError indicates there are not enough distinct premium
// values to form the requested number of clusters.
type InsufficientDataError struct {
	Rows     int
	Distinct int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d distinct premium values across %d rows, need at least %d", e.Distinct, e.Rows, e.Required)
}

// LabelMapError reports an invalid cluster-to-label mapping.
type LabelMapError struct {
	Cluster int
	Reason  string
}

func (e *LabelMapError) Error() string {
	return fmt.Sprintf("cluster label map: cluster %d: %s", e.Cluster, e.Reason)
}
