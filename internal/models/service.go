package models

// Service is a grooming service from the salon catalog (configs/services.yaml).
// The catalog is reference data: the bot never mutates it.
type Service struct {
	ID              int64  `yaml:"id" json:"id"`
	Name            string `yaml:"name" json:"name"`
	Description     string `yaml:"description" json:"description"`
	Price           int64  `yaml:"price" json:"price"`
	DurationMinutes int64  `yaml:"duration_minutes" json:"duration_minutes"`
	ImageURL        string `yaml:"image_url" json:"image_url,omitempty"`
	Available       bool   `yaml:"available" json:"available"`
	SortOrder       int64  `yaml:"sort_order" json:"sort_order"`
}
