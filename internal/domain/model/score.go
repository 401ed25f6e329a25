package model

// ScoreBreakdown decomposes one performance's fantasy value. Milestone
// bonuses and penalties are already inside the component they belong to;
// Bonus restates their sum for display. Total is the component sum
// floored at zero, components themselves are never floored.
type ScoreBreakdown struct {
	Batting  float64
	Bowling  float64
	Fielding float64
	Bonus    float64
	Total    float64
}
