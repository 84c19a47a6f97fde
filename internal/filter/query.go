package filter

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
)

// Query keys. Range fields and binary flags use their field name.
const (
	QueryGroups   = "groups"
	QueryTypes    = "types"
	QueryDate     = "date"
	QuerySearch   = "q"
	QuerySelected = "selected"
	QueryHovered  = "hovered"
	QueryRegion   = "region"
)

const dateLayout = "2006-01-02"

// EncodeQuery writes a FilterState as URL query parameters:
//
//	groups=run,ride        active groups (the key is present even when empty)
//	types=Walk,-Ride       per-type overrides, '-' switches a type off
//	date=2024-01-01,       either bound may be empty
//	distance=1000,5000     numeric range, either bound may be empty
//	q=lake                 search
//	commute=true           binary flag
//	selected=4,8           selected ids
//	hovered=4
//	region=s,w,n,e
func EncodeQuery(s models.FilterState) url.Values {
	v := url.Values{}
	if s.SportGroups != nil {
		var on []string
		for id, active := range s.SportGroups {
			if active {
				on = append(on, id)
			}
		}
		sort.Strings(on)
		v.Set(QueryGroups, strings.Join(on, ","))
	}
	if len(s.SportTypes) > 0 {
		types := make([]string, 0, len(s.SportTypes))
		for tag, on := range s.SportTypes {
			if on {
				types = append(types, tag)
			} else {
				types = append(types, "-"+tag)
			}
		}
		sort.Strings(types)
		v.Set(QueryTypes, strings.Join(types, ","))
	}
	if !s.DateRange.IsOpen() {
		v.Set(QueryDate, formatTime(s.DateRange.Start)+","+formatTime(s.DateRange.End))
	}
	for field, r := range s.Values {
		if !r.IsOpen() {
			v.Set(field, formatFloat(r.Min)+","+formatFloat(r.Max))
		}
	}
	if s.Search != "" {
		v.Set(QuerySearch, s.Search)
	}
	for field, b := range s.Binary {
		if b != nil {
			v.Set(field, strconv.FormatBool(*b))
		}
	}
	if len(s.Selected) > 0 {
		ids := make([]string, len(s.Selected))
		for i, id := range s.Selected {
			ids[i] = strconv.FormatInt(id, 10)
		}
		v.Set(QuerySelected, strings.Join(ids, ","))
	}
	if s.Hovered != nil {
		v.Set(QueryHovered, strconv.FormatInt(*s.Hovered, 10))
	}
	if s.Region != nil {
		r := s.Region
		v.Set(QueryRegion, strings.Join([]string{
			strconv.FormatFloat(r.South, 'f', -1, 64),
			strconv.FormatFloat(r.West, 'f', -1, 64),
			strconv.FormatFloat(r.North, 'f', -1, 64),
			strconv.FormatFloat(r.East, 'f', -1, 64),
		}, ","))
	}
	return v
}

// DecodeQuery reads the parameters written by EncodeQuery. Keys it does not
// know (pagination, chart options) are ignored. A date-only end bound covers
// the whole day.
func DecodeQuery(v url.Values) (models.FilterState, error) {
	var s models.FilterState

	if v.Has(QueryGroups) {
		s.SportGroups = map[string]bool{}
		for _, id := range splitList(v.Get(QueryGroups)) {
			s.SportGroups[id] = true
		}
	}
	if types := splitList(v.Get(QueryTypes)); len(types) > 0 {
		s.SportTypes = make(map[string]bool, len(types))
		for _, t := range types {
			if strings.HasPrefix(t, "-") {
				s.SportTypes[t[1:]] = false
			} else {
				s.SportTypes[t] = true
			}
		}
	}
	if raw := v.Get(QueryDate); raw != "" {
		lo, hi, err := splitPair(raw, QueryDate)
		if err != nil {
			return s, err
		}
		if s.DateRange.Start, err = parseTime(lo, false); err != nil {
			return s, perr.WithField(err, QueryDate)
		}
		if s.DateRange.End, err = parseTime(hi, true); err != nil {
			return s, perr.WithField(err, QueryDate)
		}
	}
	for _, field := range models.NumericFields {
		raw := v.Get(field)
		if raw == "" {
			continue
		}
		lo, hi, err := splitPair(raw, field)
		if err != nil {
			return s, err
		}
		var r models.Range
		if r.Min, err = parseFloat(lo, field); err != nil {
			return s, err
		}
		if r.Max, err = parseFloat(hi, field); err != nil {
			return s, err
		}
		if s.Values == nil {
			s.Values = map[string]models.Range{}
		}
		s.Values[field] = r
	}
	s.Search = strings.TrimSpace(v.Get(QuerySearch))
	for _, field := range models.BinaryFields {
		raw := v.Get(field)
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return s, perr.WithField(perr.InvalidArgf("%s must be true or false, got %q", field, raw), field)
		}
		if s.Binary == nil {
			s.Binary = map[string]*bool{}
		}
		s.Binary[field] = &b
	}
	for _, raw := range splitList(v.Get(QuerySelected)) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return s, perr.WithField(perr.InvalidArgf("invalid selected id %q", raw), QuerySelected)
		}
		s.Selected = append(s.Selected, id)
	}
	if raw := v.Get(QueryHovered); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return s, perr.WithField(perr.InvalidArgf("invalid hovered id %q", raw), QueryHovered)
		}
		s.Hovered = &id
	}
	if raw := v.Get(QueryRegion); raw != "" {
		parts := strings.Split(raw, ",")
		if len(parts) != 4 {
			return s, perr.WithField(perr.InvalidArgf("region needs south,west,north,east, got %q", raw), QueryRegion)
		}
		var c [4]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil || !finite(f) {
				return s, perr.WithField(perr.InvalidArgf("invalid region coordinate %q", p), QueryRegion)
			}
			c[i] = f
		}
		s.Region = &models.BBox{South: c[0], West: c[1], North: c[2], East: c[3]}
	}
	return s, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitPair(raw, field string) (string, string, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return "", "", perr.WithField(perr.InvalidArgf("%s needs min,max, got %q", field, raw), field)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

func parseFloat(raw, field string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(f) {
		return nil, perr.WithField(perr.InvalidArgf("invalid bound %q for %s", raw, field), field)
	}
	return &f, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func parseTime(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Second)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, perr.InvalidArgf("invalid date %q", raw)
	}
	t = t.UTC()
	return &t, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	u := t.UTC()
	if u.Equal(u.Truncate(24 * time.Hour)) {
		return u.Format(dateLayout)
	}
	return u.Format(time.RFC3339)
}
