// Package display formats catalog items and feeds for the terminal.
package display

import (
	"fmt"
	"strings"
	"time"

	"newsdesk/models"
)

const separator = " • "

type TerminalFormatter struct {
	now func() time.Time
}

func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{now: time.Now}
}

// NewTerminalFormatterAt formats relative times against a fixed instant
func NewTerminalFormatterAt(now time.Time) *TerminalFormatter {
	return &TerminalFormatter{now: func() time.Time { return now }}
}

// FormatItem renders one item as a header line followed by indented details
func (f *TerminalFormatter) FormatItem(item models.Item) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("[%s] %s", strings.ToUpper(item.Source), item.Title))

	meta := []string{item.ID}
	if item.Author != "" {
		meta = append(meta, "by "+item.Author)
	}
	meta = append(meta, f.FormatTimestamp(item.PublishedAt))
	lines = append(lines, "  "+strings.Join(meta, separator))

	if len(item.Tags) > 0 {
		lines = append(lines, "  #"+strings.Join(item.Tags, " #"))
	}
	if item.URL != "" {
		lines = append(lines, "  "+item.URL)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (f *TerminalFormatter) FormatItems(items []models.Item) string {
	if len(items) == 0 {
		return "No items to display.\n"
	}

	formatted := make([]string, 0, len(items))
	for _, item := range items {
		formatted = append(formatted, f.FormatItem(item))
	}
	return strings.Join(formatted, "\n")
}

// FormatFeeds renders one line per feed, marking pinned and default feeds
func (f *TerminalFormatter) FormatFeeds(feeds []models.Feed) string {
	if len(feeds) == 0 {
		return "No feeds to display.\n"
	}

	var sb strings.Builder
	for _, feed := range feeds {
		marker := " "
		if feed.IsPinned {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s (%s)", marker, feed.Name, feed.ID)
		if feed.IsDefault {
			line += separator + "default"
		}
		if terms := feed.Criteria.Terms(); len(terms) > 0 {
			line += separator + strings.Join(terms, ", ")
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func (f *TerminalFormatter) FormatAlgorithms(algorithms []models.Algorithm) string {
	if len(algorithms) == 0 {
		return "No algorithms to display.\n"
	}

	var sb strings.Builder
	for _, algorithm := range algorithms {
		check := "[ ]"
		if algorithm.IsSelected {
			check = "[x]"
		}
		fmt.Fprintf(&sb, "%s %s (%s)\n", check, algorithm.Name, algorithm.ID)
	}
	return sb.String()
}

// FormatTimestamp formats a publication time relative to now
func (f *TerminalFormatter) FormatTimestamp(t *time.Time) string {
	if t == nil {
		return "undated"
	}

	diff := f.now().Sub(*t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
