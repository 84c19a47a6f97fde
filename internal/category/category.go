// Package category resolves sport-type tags to their display group
package category

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
)

// Catalog is a read-only lookup over a validated CategoryConfig
type Catalog struct {
	groups   []models.CategoryGroup
	byID     map[string]int
	byAlias  map[string]string
	fallback string
}

var validate = validator.New()

// New validates cfg and builds the lookup tables
func New(cfg models.CategoryConfig) (*Catalog, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid category configuration")
	}

	c := &Catalog{
		groups:   make([]models.CategoryGroup, len(cfg.Groups)),
		byID:     make(map[string]int, len(cfg.Groups)),
		byAlias:  make(map[string]string),
		fallback: cfg.Fallback,
	}
	for i, g := range cfg.Groups {
		if _, dup := c.byID[g.ID]; dup {
			return nil, perr.InvalidArgf("duplicate category group %q", g.ID)
		}
		g.Aliases = append([]string(nil), g.Aliases...)
		c.groups[i] = g
		c.byID[g.ID] = i
		for _, alias := range g.Aliases {
			if owner, taken := c.byAlias[alias]; taken {
				return nil, perr.InvalidArgf("sport type %q belongs to both %q and %q", alias, owner, g.ID)
			}
			c.byAlias[alias] = g.ID
		}
	}
	if _, ok := c.byID[cfg.Fallback]; !ok {
		return nil, perr.InvalidArgf("fallback group %q is not configured", cfg.Fallback)
	}
	return c, nil
}

// MustDefault returns the built-in catalog; it panics only if the built-in table is broken
func MustDefault() *Catalog {
	c, err := New(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("default category configuration: %v", err))
	}
	return c
}

// GroupOf returns the group id for a sport type, falling back for unknown tags
func (c *Catalog) GroupOf(sportType string) string {
	if id, ok := c.byAlias[sportType]; ok {
		return id
	}
	return c.fallback
}

// Fallback returns the id of the group unknown tags fall into
func (c *Catalog) Fallback() string { return c.fallback }

// Group returns a copy of a group by id
func (c *Catalog) Group(id string) (models.CategoryGroup, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.CategoryGroup{}, false
	}
	g := c.groups[i]
	g.Aliases = append([]string(nil), g.Aliases...)
	return g, true
}

// Groups returns all groups in configuration order
func (c *Catalog) Groups() []models.CategoryGroup {
	out := make([]models.CategoryGroup, len(c.groups))
	for i, g := range c.groups {
		g.Aliases = append([]string(nil), g.Aliases...)
		out[i] = g
	}
	return out
}

// IDs returns group ids in configuration order
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.groups))
	for i, g := range c.groups {
		out[i] = g.ID
	}
	return out
}

// Aliases returns every known sport type, sorted
func (c *Catalog) Aliases() []string {
	out := make([]string, 0, len(c.byAlias))
	for alias := range c.byAlias {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// DefaultActive returns the configured active flag per group
func (c *Catalog) DefaultActive() map[string]bool {
	out := make(map[string]bool, len(c.groups))
	for _, g := range c.groups {
		out[g.ID] = g.Active
	}
	return out
}

// Color returns the display color of a group id, grey for unknown ids such as Multiple
func (c *Catalog) Color(id string) string {
	if i, ok := c.byID[id]; ok {
		return c.groups[i].Color
	}
	return "#aaaaaa"
}
