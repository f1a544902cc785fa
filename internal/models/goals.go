package models

// Goals holds the per-scope daily targets for each tracked nutrient.
// A zero target is legal; downstream percentage math tolerates it.
type Goals struct {
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Fiber     float64 `json:"fiber"`
	Hydration float64 `json:"hydration"`
}

// DefaultGoals returns the deployment-wide fallback targets.
func DefaultGoals() Goals {
	return Goals{
		Calories:  2000,
		Protein:   150,
		Carbs:     250,
		Fat:       70,
		Fiber:     25,
		Hydration: 2000,
	}
}
