package dataset

import "math"

// RiskLevel is the categorical premium risk label assigned by clustering.
type RiskLevel string

const (
	Low      RiskLevel = "Low"
	Moderate RiskLevel = "Moderate"
	High     RiskLevel = "High"
)

// RiskLevels is the canonical display order.
var RiskLevels = []RiskLevel{Low, Moderate, High}

// Valid reports whether l is one of the canonical levels.
func (l RiskLevel) Valid() bool {
	return l == Low || l == Moderate || l == High
}

// Condition names a binary health-condition column.
type Condition string

const (
	Diabetes                Condition = "Diabetes"
	BloodPressureProblems   Condition = "BloodPressureProblems"
	HistoryOfCancerInFamily Condition = "HistoryOfCancerInFamily"
	HasMajorSurgery         Condition = "HasMajorSurgery"
	AnyChronicDiseases      Condition = "AnyChronicDiseases"
)

// Conditions lists the comparable condition flags in menu order.
var Conditions = []Condition{
	Diabetes,
	BloodPressureProblems,
	HistoryOfCancerInFamily,
	HasMajorSurgery,
	AnyChronicDiseases,
}

// Record is one person's row. Loaded fields are set once by the loader;
// derived fields are filled by later pipeline stages on a copy of the table.
type Record struct {
	Age                     float64 `json:"age" yaml:"age"`
	PremiumPrice            float64 `json:"premium_price" yaml:"premium_price"`
	Diabetes                int     `json:"diabetes" yaml:"diabetes"`
	BloodPressureProblems   int     `json:"blood_pressure_problems" yaml:"blood_pressure_problems"`
	HistoryOfCancerInFamily int     `json:"history_of_cancer_in_family" yaml:"history_of_cancer_in_family"`
	AnyChronicDiseases      int     `json:"any_chronic_diseases" yaml:"any_chronic_diseases"`
	NumberOfMajorSurgeries  int     `json:"number_of_major_surgeries" yaml:"number_of_major_surgeries"`
	// SurgeriesMissing is set when the source cell was empty.
	SurgeriesMissing bool `json:"surgeries_missing,omitempty" yaml:"surgeries_missing,omitempty"`

	HasMajorSurgery int       `json:"has_major_surgery" yaml:"has_major_surgery"`
	AgeGroup        string    `json:"age_group,omitempty" yaml:"age_group,omitempty"`
	Cluster         int       `json:"cluster" yaml:"cluster"`
	RiskLevel       RiskLevel `json:"risk_level,omitempty" yaml:"risk_level,omitempty"`
}

// Flag returns the 0/1 value of a condition column.
func (r Record) Flag(c Condition) (int, bool) {
	switch c {
	case Diabetes:
		return r.Diabetes, true
	case BloodPressureProblems:
		return r.BloodPressureProblems, true
	case HistoryOfCancerInFamily:
		return r.HistoryOfCancerInFamily, true
	case HasMajorSurgery:
		return r.HasMajorSurgery, true
	case AnyChronicDiseases:
		return r.AnyChronicDiseases, true
	}
	return 0, false
}

// HasPremium reports whether PremiumPrice was present in the source.
func (r Record) HasPremium() bool { return !math.IsNaN(r.PremiumPrice) }

// ParseCondition resolves a condition name case-insensitively.
func ParseCondition(name string) (Condition, bool) {
	for _, c := range Conditions {
		if equalFold(string(c), name) {
			return c, true
		}
	}
	return "", false
}

// ParseRiskLevel resolves a level name case-insensitively.
func ParseRiskLevel(name string) (RiskLevel, bool) {
	for _, l := range RiskLevels {
		if equalFold(string(l), name) {
			return l, true
		}
	}
	return "", false
}
