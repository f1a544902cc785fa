// Package interpreter turns free-text corrections like "500ml coke" into
// structured nutrition values.
package interpreter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Parsed is the structured result of interpreting a correction text.
// Manual corrections never produce fiber or hydration; AI-sourced entries
// keep whatever they had.
type Parsed struct {
	FoodName    string
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	ServingSize string
}

// Longer unit names first so "cups" is not consumed as "cup" + trailing "s"
// and "kg" is not consumed as "g".
var quantityPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(ml|kg|l|g|oz|cups|cup|tbsp|tsp)\b`)

// Interpreter parses correction text against a food lookup.
type Interpreter struct {
	lookup Lookup
}

// New creates an Interpreter with the given lookup. A nil lookup uses the
// built-in static table.
func New(lookup Lookup) *Interpreter {
	if lookup == nil {
		lookup = StaticLookup{}
	}
	return &Interpreter{lookup: lookup}
}

// Parse extracts a quantity, unit and food name from free text and scales
// the food's standard-serving nutrition accordingly. Parsing is best effort:
// missing pieces fall back to one standard serving of an unknown food rather
// than failing.
func (p *Interpreter) Parse(text string) Parsed {
	text = strings.ToLower(strings.TrimSpace(text))

	quantity := 1.0
	unit := "serving"
	servingSize := "Standard serving"

	if m := quantityPattern.FindStringSubmatch(text); m != nil {
		if q, err := strconv.ParseFloat(m[1], 64); err == nil {
			quantity = q
			unit = m[2]
			servingSize = m[1] + m[2]
			text = strings.Replace(text, m[0], "", 1)
		}
	}

	name := strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	if name == "" {
		name = "unknown food"
	}

	base, ok := p.lookup.Find(name)
	if !ok {
		base = defaultNutrition
	}

	mult := servings(quantity, unit)
	return Parsed{
		FoodName:    capitalize(name),
		Calories:    math.Round(base.Calories * mult),
		Protein:     round1(base.Protein * mult),
		Carbs:       round1(base.Carbs * mult),
		Fat:         round1(base.Fat * mult),
		ServingSize: servingSize,
	}
}

// servings converts a quantity in the given unit into a number of standard
// servings (250ml drink, 100g portion, one cup).
func servings(quantity float64, unit string) float64 {
	switch unit {
	case "ml":
		return quantity / 250
	case "l":
		return quantity * 4
	case "g":
		return quantity / 100
	case "kg":
		return quantity * 10
	case "oz":
		return quantity / 4
	case "cup", "cups":
		return quantity
	case "tbsp":
		return quantity / 16
	case "tsp":
		return quantity / 48
	default:
		return 1
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// capitalize upper-cases the first letter only.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// containsFold reports whether substr occurs in s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
