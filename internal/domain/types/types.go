// Package types contains common types used across the application
package types

// Standing represents one row of the season standings table.
type Standing struct {
	Rank        int     `json:"rank"`
	PlayerKey   string  `json:"player_key"`
	DisplayName string  `json:"display_name"`
	Club        string  `json:"club"`
	Matches     int     `json:"matches"`
	Points      float64 `json:"points"`
	Multiplier  float64 `json:"multiplier"`
}
