package domain

import "time"

// DefaultCategoryColor is applied when a category is created without one.
const DefaultCategoryColor = "#3B82F6"

// Category groups tickets by topic.
type Category struct {
	ID          string
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
}
