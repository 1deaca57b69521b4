package domain

import "time"

// RankedEntity is one bar of a single-period ranking chart (P/S, P/E, TVL).
type RankedEntity struct {
	Name     string    `json:"name"`
	Category Category  `json:"category,omitempty"`
	Value    float64   `json:"value"`
	Datetime time.Time `json:"datetime"`
}
