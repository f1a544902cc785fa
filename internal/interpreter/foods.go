package interpreter

// BaseNutrition is the nutrition content of one standard serving of a food.
type BaseNutrition struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// Lookup finds the base nutrition for a food name. Implementations decide
// how fuzzy the match is; the built-in table matches by substring.
type Lookup interface {
	Find(foodName string) (BaseNutrition, bool)
}

// staticFood pairs a lowercase match key with its base nutrition. Kept as an
// ordered slice so lookup is deterministic when several keys could match.
type staticFood struct {
	key  string
	base BaseNutrition
}

// staticTable covers common foods and drinks per standard serving. Values
// are rough household estimates, not a verified nutrition database.
var staticTable = []staticFood{
	{"coffee", BaseNutrition{Calories: 5, Protein: 0.3}},
	{"tea", BaseNutrition{Calories: 2, Carbs: 0.5}},
	{"coke", BaseNutrition{Calories: 140, Carbs: 39}},
	{"cola", BaseNutrition{Calories: 140, Carbs: 39}},
	{"water", BaseNutrition{}},
	{"milk", BaseNutrition{Calories: 150, Protein: 8, Carbs: 12, Fat: 8}},
	{"juice", BaseNutrition{Calories: 110, Protein: 0.5, Carbs: 26, Fat: 0.3}},
	{"beer", BaseNutrition{Calories: 154, Protein: 1.6, Carbs: 13}},
	{"wine", BaseNutrition{Calories: 125, Protein: 0.1, Carbs: 4}},
	{"apple", BaseNutrition{Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3}},
	{"banana", BaseNutrition{Calories: 105, Protein: 1.3, Carbs: 27, Fat: 0.4}},
	{"orange", BaseNutrition{Calories: 62, Protein: 1.2, Carbs: 15, Fat: 0.2}},
	{"rice", BaseNutrition{Calories: 205, Protein: 4.3, Carbs: 45, Fat: 0.4}},
	{"bread", BaseNutrition{Calories: 80, Protein: 3, Carbs: 15, Fat: 1}},
	{"pasta", BaseNutrition{Calories: 220, Protein: 8, Carbs: 43, Fat: 1.3}},
	{"egg", BaseNutrition{Calories: 78, Protein: 6, Carbs: 0.6, Fat: 5.3}},
	{"chicken", BaseNutrition{Calories: 165, Protein: 31, Fat: 3.6}},
	{"beef", BaseNutrition{Calories: 250, Protein: 26, Fat: 17}},
	{"fish", BaseNutrition{Calories: 140, Protein: 20, Fat: 6}},
	{"salad", BaseNutrition{Calories: 33, Protein: 2.5, Carbs: 6, Fat: 0.4}},
	{"pizza", BaseNutrition{Calories: 285, Protein: 12, Carbs: 36, Fat: 10}},
	{"burger", BaseNutrition{Calories: 354, Protein: 20, Carbs: 30, Fat: 17}},
	{"yogurt", BaseNutrition{Calories: 59, Protein: 10, Carbs: 3.6, Fat: 0.4}},
	{"cheese", BaseNutrition{Calories: 113, Protein: 7, Carbs: 0.4, Fat: 9}},
	{"chocolate", BaseNutrition{Calories: 155, Protein: 2, Carbs: 17, Fat: 9}},
	{"ice cream", BaseNutrition{Calories: 137, Protein: 2.3, Carbs: 16, Fat: 7}},
}

// defaultNutrition is the fallback when no table key matches.
var defaultNutrition = BaseNutrition{Calories: 100, Protein: 5, Carbs: 15, Fat: 3}

// StaticLookup matches food names against the built-in table by
// case-insensitive substring.
type StaticLookup struct{}

// Find returns the first table entry whose key is a substring of the given
// lowercase food name.
func (StaticLookup) Find(foodName string) (BaseNutrition, bool) {
	for _, f := range staticTable {
		if containsFold(foodName, f.key) {
			return f.base, true
		}
	}
	return BaseNutrition{}, false
}
