// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// CategorySuggester suggests a spending category for a recurring template
// based on its merchant and description.
type CategorySuggester interface {
	// IsAvailable reports whether the suggester is configured and usable.
	IsAvailable() bool

	// Suggest returns a category name for the given merchant/description, or
	// an empty string when no sensible suggestion exists.
	Suggest(ctx context.Context, merchant, description string) (string, error)
}
