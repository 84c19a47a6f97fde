package cli

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/timebucket"
)

const (
	dayGlyph   = "■"
	emptyGlyph = "·"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			PaddingRight(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)
)

// RenderCalendar draws days as a GitHub-style grid: one column per week,
// Monday on top. Days absent from the input are drawn as empty cells.
func RenderCalendar(days []models.CalendarDay) string {
	if len(days) == 0 {
		return "no activities"
	}

	byDay := make(map[time.Time]models.CalendarDay, len(days))
	for _, d := range days {
		byDay[timebucket.Truncate(d.Day, timebucket.Day)] = d
	}
	first := timebucket.Truncate(days[0].Day, timebucket.Week)
	last := timebucket.Truncate(days[len(days)-1].Day, timebucket.Day)

	labels := []string{"Mon", "", "Wed", "", "Fri", "", "Sun"}
	columns := []string{labelStyle.Render(strings.Join(labels, "\n"))}
	for week := first; !week.After(last); week = timebucket.Next(week, timebucket.Week) {
		cells := make([]string, 7)
		for i := range cells {
			day := week.AddDate(0, 0, i)
			d, ok := byDay[day]
			switch {
			case day.After(last):
				cells[i] = " "
			case ok:
				cells[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color)).Render(dayGlyph)
			default:
				cells[i] = emptyStyle.Render(emptyGlyph)
			}
		}
		columns = append(columns, strings.Join(cells, "\n"))
	}

	title := titleStyle.Render(first.Format(time.DateOnly) + " to " + last.Format(time.DateOnly))
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
}
