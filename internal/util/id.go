// Package util contains small helpers shared across stepmesh packages.
package util

import "github.com/google/uuid"

// NewID generates a new unique identifier for steppers, agents and events.
func NewID() string { return uuid.NewString() }
