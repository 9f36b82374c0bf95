// Package render formats search verdicts, events and cache statistics for
// terminal output.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/core"
	"github.com/scour-dev/scour/pkg/events"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	includedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	excludedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32")).
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("32")).
			Padding(0, 1).
			Margin(1, 0, 1, 0)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)
)

var titleCaser = cases.Title(language.English)

// Verdicts renders one line per location, matches first, then included
// non-matches, then excluded locations.
func Verdicts(verdicts core.VerdictMap) string {
	if len(verdicts) == 0 {
		return noDataStyle.Render("No locations searched.")
	}

	locations := make([]string, 0, len(verdicts))
	for location := range verdicts {
		locations = append(locations, location)
	}
	sort.Slice(locations, func(i, j int) bool {
		vi, vj := verdicts[locations[i]], verdicts[locations[j]]
		if vi.Matches != vj.Matches {
			return vi.Matches
		}
		if vi.Included != vj.Included {
			return vi.Included
		}
		return locations[i] < locations[j]
	})

	var b strings.Builder
	for _, location := range locations {
		v := verdicts[location]
		switch {
		case v.Matches:
			b.WriteString(matchStyle.Render("✓ "+location) + "\n")
		case v.Included:
			b.WriteString(includedStyle.Render("  "+location) + "\n")
		default:
			b.WriteString(excludedStyle.Render("- "+location+" (excluded)") + "\n")
		}
	}
	return b.String()
}

// Summary renders the closing counts line for a search.
func Summary(term string, verdicts core.VerdictMap, cached bool) string {
	var matched, included int
	for _, v := range verdicts {
		if v.Matches {
			matched++
		}
		if v.Included {
			included++
		}
	}

	text := fmt.Sprintf("%d/%d matched %q (%d searchable)", matched, len(verdicts), term, included)
	if cached {
		text += " [cached]"
	}
	return summaryStyle.Render(text)
}

// Event renders one progress or error event as a single line.
func Event(e events.Event) string {
	switch ev := e.(type) {
	case events.ProgressEvent:
		return progressStyle.Render(fmt.Sprintf("[%3.0f%%]", ev.Fraction*100))
	case events.ErrorEvent:
		return errorStyle.Render(fmt.Sprintf("error (%s): %s", ev.ID, ev.Message))
	default:
		return progressStyle.Render(fmt.Sprintf("%v", e))
	}
}

// Stats renders cache statistics.
func Stats(stats cache.Stats) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(titleCaser.String(stats.Provider)+" Cache") + "\n")
	b.WriteString(fmt.Sprintf("Entries: %s\n", formatNumber(stats.Entries)))
	b.WriteString(fmt.Sprintf("Size:    %s\n", formatBytes(stats.SizeBytes)))
	return b.String()
}
