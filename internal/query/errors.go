package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/features"
)

// ErrSelfCrossTab is returned when both cross-tab axes name the same condition.
var ErrSelfCrossTab = errors.New("cross-tab axes must be different conditions")

// UnknownConditionError reports a condition name outside dataset.Conditions.
type UnknownConditionError struct {
	Name string
}

func (e *UnknownConditionError) Error() string {
	names := make([]string, len(dataset.Conditions))
	for i, c := range dataset.Conditions {
		names[i] = string(c)
	}
	return fmt.Sprintf("unknown condition %q (valid: %s)", e.Name, strings.Join(names, ", "))
}

// UnknownRiskLevelError reports a risk level name outside Low, Moderate, High.
type UnknownRiskLevelError struct {
	Name string
}

func (e *UnknownRiskLevelError) Error() string {
	return fmt.Sprintf("unknown risk level %q (valid: Low, Moderate, High)", e.Name)
}

// UnknownAgeGroupError reports an age group label that is not a bucket.
type UnknownAgeGroupError struct {
	Name string
}

func (e *UnknownAgeGroupError) Error() string {
	return fmt.Sprintf("unknown age group %q (valid: %s)", e.Name, strings.Join(features.AgeLabels, ", "))
}
