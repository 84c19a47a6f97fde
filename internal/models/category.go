package models

// CategoryGroup is a named cluster of sport-type tags
type CategoryGroup struct {
	ID      string   `json:"id" validate:"required,alphanum"`
	Name    string   `json:"name" validate:"required"`
	Color   string   `json:"color" validate:"required,hexcolor"`
	Icon    string   `json:"icon,omitempty"`
	Aliases []string `json:"aliases" validate:"dive,required"`
	Active  bool     `json:"active"`
}

// CategoryConfig is the static category configuration supplied at startup
type CategoryConfig struct {
	Groups   []CategoryGroup `json:"groups" validate:"required,min=1,dive"`
	Fallback string          `json:"fallback" validate:"required"` // group id for unrecognized tags
}
