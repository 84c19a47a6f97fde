// Package cli implements the dashctl commands over the dashboard service
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jengzang/activity-dashboard-go/internal/filter"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/service"
)

type Context struct {
	Dashboard *service.DashboardService
	Out       io.Writer
}

// FilterFlags mirror the URL query codec so a dashboard link's query can be
// pasted flag by flag
type FilterFlags struct {
	Groups   string            `help:"Active sport groups, comma separated. Unset keeps the configured defaults." placeholder:"run,ride"`
	Types    string            `help:"Per-type overrides, comma separated; prefix a type with - to switch it off." placeholder:"Walk,-Ride"`
	Date     string            `help:"Local start date range as start,end; either side may be empty." placeholder:"2024-01-01,"`
	Range    map[string]string `help:"Numeric range as field=min,max; repeatable." placeholder:"distance=1000,5000"`
	Search   string            `short:"q" help:"Case-insensitive name search."`
	Flag     map[string]string `help:"Binary flag as field=true|false; repeatable." placeholder:"commute=true"`
	Selected string            `help:"Selected activity ids, comma separated."`
	Hovered  string            `help:"Hovered activity id."`
	Region   string            `help:"Viewport as south,west,north,east."`
}

// State decodes the flags through the same codec the HTTP API uses
func (f FilterFlags) State() (models.FilterState, error) {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set(filter.QueryGroups, f.Groups)
	set(filter.QueryTypes, f.Types)
	set(filter.QueryDate, f.Date)
	set(filter.QuerySearch, f.Search)
	set(filter.QuerySelected, f.Selected)
	set(filter.QueryHovered, f.Hovered)
	set(filter.QueryRegion, f.Region)
	for field, bounds := range f.Range {
		if !models.IsNumericField(field) {
			return models.FilterState{}, fmt.Errorf("unknown range field %q", field)
		}
		v.Set(field, bounds)
	}
	for field, want := range f.Flag {
		if !models.IsBinaryField(field) {
			return models.FilterState{}, fmt.Errorf("unknown flag %q", field)
		}
		v.Set(field, want)
	}
	return filter.DecodeQuery(v)
}

// parseDimensions turns ["date", "!commute"] into a request; empty means the default request
func parseDimensions(dims []string) filter.Request {
	if len(dims) == 0 {
		return nil
	}
	req := make(filter.Request, len(dims))
	for _, d := range dims {
		if name, ok := strings.CutPrefix(d, "!"); ok {
			req[name] = false
		} else {
			req[d] = true
		}
	}
	return req
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
