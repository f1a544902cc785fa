package models

import (
	"time"

	"github.com/google/uuid"
)

// Confidence describes how trustworthy a nutrition estimate is.
type Confidence string

const (
	ConfidenceHigh      Confidence = "high"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceLow       Confidence = "low"
	ConfidenceCorrected Confidence = "manually corrected"
)

// FoodEntry is one logged food occurrence inside a scope's daily ledger.
// CreatedAt is set once and never changes; together with the ID it anchors
// the entry for later correction and removal.
type FoodEntry struct {
	ID          uuid.UUID  `json:"id"`
	FoodName    string     `json:"food_name"`
	Calories    float64    `json:"calories"`
	Protein     float64    `json:"protein"`
	Carbs       float64    `json:"carbs"`
	Fat         float64    `json:"fat"`
	Fiber       float64    `json:"fiber"`
	Hydration   float64    `json:"hydration"`
	ServingSize string     `json:"serving_size"`
	Confidence  Confidence `json:"confidence"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SameEntry reports whether two entries refer to the same ledger row.
// Entries created by this system carry a surrogate ID, which wins when both
// sides have one. Older rows (or snapshots taken before an ID existed) fall
// back to the composite fingerprint: creation time, name and nutrient values.
func SameEntry(a, b FoodEntry) bool {
	if a.ID != uuid.Nil && b.ID != uuid.Nil {
		return a.ID == b.ID
	}
	return a.CreatedAt.Equal(b.CreatedAt) &&
		a.FoodName == b.FoodName &&
		a.Calories == b.Calories &&
		a.Protein == b.Protein &&
		a.Carbs == b.Carbs &&
		a.Fat == b.Fat
}

// NutrientTotals is the field-wise sum of a set of entries.
type NutrientTotals struct {
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Fiber     float64 `json:"fiber"`
	Hydration float64 `json:"hydration"`
}

// Add accumulates one entry into the totals.
func (t *NutrientTotals) Add(e FoodEntry) {
	t.Calories += e.Calories
	t.Protein += e.Protein
	t.Carbs += e.Carbs
	t.Fat += e.Fat
	t.Fiber += e.Fiber
	t.Hydration += e.Hydration
}

// LedgerDate formats a time as the calendar-date partition key used by the
// ledger, in the server's local timezone.
func LedgerDate(t time.Time) string {
	return t.Format("2006-01-02")
}
