package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jengzang/activity-dashboard-go/internal/service"
)

type ImportCmd struct {
	File string `arg:"" help:"JSON array of activities; - reads stdin."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", c.File, err)
		}
		defer f.Close()
		r = f
	}

	acts, err := service.DecodeActivities(r)
	if err != nil {
		return err
	}
	res, err := ctx.Dashboard.Import(context.Background(), acts)
	if err != nil {
		return err
	}
	return writeJSON(ctx.Out, res)
}

type FilterCmd struct {
	FilterFlags `embed:""`

	Dimensions []string `short:"d" help:"Dimensions to apply; prefix with ! to require the negation. Default: all but selected and hovered."`
	Expression bool     `short:"e" help:"Print the compiled expression tree instead of ids."`
}

func (c *FilterCmd) Run(ctx *Context) error {
	state, err := c.State()
	if err != nil {
		return err
	}
	req := parseDimensions(c.Dimensions)

	if c.Expression {
		tree, err := ctx.Dashboard.Expression(context.Background(), state, req)
		if err != nil {
			return err
		}
		return writeJSON(ctx.Out, tree)
	}

	ids, err := ctx.Dashboard.Evaluate(context.Background(), state, req)
	if err != nil {
		return err
	}
	return writeJSON(ctx.Out, ids)
}

type TimelineCmd struct {
	FilterFlags `embed:""`

	Period string `default:"week" enum:"day,week,month,year" help:"Bucket period."`
	Value  string `default:"distance" help:"Metric to reduce."`
	Group  string `default:"none" enum:"none,type" help:"Split the series by sport group."`
	Reduce string `default:"sum" help:"Reducer: sum, mean, count, max, min, median."`
	Window int    `default:"0" help:"Smoothing half-width in buckets."`
	Kernel string `default:"mean" enum:"mean,gaussian" help:"Smoothing kernel."`
	From   string `help:"Period the window was chosen for; rescales it to --period."`
}

func (c *TimelineCmd) Run(ctx *Context) error {
	state, err := c.State()
	if err != nil {
		return err
	}
	tl, err := ctx.Dashboard.Timeline(context.Background(), state, service.TimelineQuery{
		Period: c.Period,
		Value:  c.Value,
		Group:  c.Group,
		Reduce: c.Reduce,
		Window: c.Window,
		Kernel: c.Kernel,
		From:   c.From,
	})
	if err != nil {
		return err
	}
	return writeJSON(ctx.Out, tl)
}

type ProgressCmd struct {
	FilterFlags `embed:""`

	Period  string `default:"year" enum:"day,week,month,year" help:"Period each curve covers."`
	Value   string `default:"distance" help:"Metric to accumulate."`
	Periods int    `default:"5" help:"Number of most recent periods to keep."`
}

func (c *ProgressCmd) Run(ctx *Context) error {
	state, err := c.State()
	if err != nil {
		return err
	}
	chart, err := ctx.Dashboard.Progress(context.Background(), state, service.ProgressQuery{
		Period:  c.Period,
		Value:   c.Value,
		Periods: c.Periods,
	})
	if err != nil {
		return err
	}
	return writeJSON(ctx.Out, chart)
}

type CalendarCmd struct {
	FilterFlags `embed:""`

	Value  string   `default:"count" help:"Metric per day, or type for the dominant sport group."`
	Reduce string   `default:"sum" help:"Reducer for days with several activities."`
	Clip   float64  `default:"0" help:"Cap the color scale at this percentile of day values."`
	Days   []string `help:"Extra days to highlight (2006-01-02)."`
	Render bool     `help:"Draw the heatmap instead of printing JSON."`
}

func (c *CalendarCmd) Run(ctx *Context) error {
	state, err := c.State()
	if err != nil {
		return err
	}
	q := service.CalendarQuery{Value: c.Value, Reduce: c.Reduce, Clip: c.Clip}
	for _, d := range c.Days {
		t, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return fmt.Errorf("invalid day %q: %w", d, err)
		}
		q.Days = append(q.Days, t)
	}

	cal, err := ctx.Dashboard.Calendar(context.Background(), state, q)
	if err != nil {
		return err
	}
	if c.Render {
		_, err := fmt.Fprintln(ctx.Out, RenderCalendar(cal.Days))
		return err
	}
	return writeJSON(ctx.Out, cal)
}
