// Package model defines the data structures shared between layers.
package model

import "time"

// Invocation records one call of a tool and its outcome.
// Error holds the tool error message when Success is false.
type Invocation struct {
	ID        string        `json:"id"`
	Tool      string        `json:"tool"`
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Error     string        `json:"error,omitempty"`
	Success   bool          `json:"success"`
	Caller    string        `json:"caller,omitempty"` // authenticated client id, empty when auth is off
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}
