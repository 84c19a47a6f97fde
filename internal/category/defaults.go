package category

import "github.com/jengzang/activity-dashboard-go/internal/models"

// Group ids of the built-in configuration
const (
	GroupBcXcSki   = "bcXcSki"
	GroupTrailHike = "trailHike"
	GroupRun       = "run"
	GroupRide      = "ride"
	GroupMisc      = "misc"
)

// DefaultConfig returns the built-in five-group configuration
func DefaultConfig() models.CategoryConfig {
	return models.CategoryConfig{
		Fallback: GroupMisc,
		Groups: []models.CategoryGroup{
			{
				ID:      GroupBcXcSki,
				Name:    "BC & XC Ski",
				Color:   "#1982C4",
				Icon:    "skiing-nordic",
				Aliases: []string{"BackcountrySki", "NordicSki", "RollerSki"},
				Active:  true,
			},
			{
				ID:      GroupTrailHike,
				Name:    "Trail / Hike",
				Color:   "#FF595E",
				Icon:    "walking",
				Aliases: []string{"Hike", "TrailRun", "RockClimbing", "Snowshoe"},
				Active:  true,
			},
			{
				ID:      GroupRun,
				Name:    "Run",
				Color:   "#FFCA3A",
				Icon:    "running",
				Aliases: []string{"Run", "VirtualRun"},
				Active:  true,
			},
			{
				ID:    GroupRide,
				Name:  "Ride",
				Color: "#8AC926",
				Icon:  "biking",
				Aliases: []string{
					"Ride", "VirtualRide", "GravelRide", "MountainBikeRide",
					"EBikeRide", "EMountainBikeRide", "Handcycle", "Velomobile",
				},
				Active: true,
			},
			{
				ID:    GroupMisc,
				Name:  "Miscellaneous",
				Color: "#6A4C93",
				Icon:  "person-circle-question",
				Aliases: []string{
					"AlpineSki", "Badminton", "Canoeing", "Crossfit", "Elliptical", "Golf",
					"HighIntensityIntervalTraining", "IceSkate", "InlineSkate", "Kayaking",
					"Kitesurf", "Pickleball", "Pilates", "Racquetball", "Rowing", "Sail",
					"Skateboard", "Snowboard", "Soccer", "Squash", "StairStepper",
					"StandUpPaddling", "Surfing", "Swim", "TableTennis", "Tennis",
					"VirtualRow", "Walk", "WeightTraining", "Wheelchair", "Windsurf",
					"Workout", "Yoga",
				},
				Active: true,
			},
		},
	}
}
