package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gosuda/slackdone/internal/board"
)

const columnWidth = 28

//nolint:gochecknoglobals // terminal styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cardStyle   = lipgloss.NewStyle().Width(columnWidth-4).PaddingLeft(1)
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).MarginTop(1)
	columnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Width(columnWidth).
			Padding(0, 1)
)

// renderBoard lays the columns out side by side.
func renderBoard(b *board.Board, notice string) string {
	title := b.ListTitle
	if title == "" {
		title = b.ListID
	}

	cols := make([]string, 0, len(b.Columns))
	for _, col := range b.Columns {
		cols = append(cols, renderColumn(col))
	}

	out := titleStyle.Render(title) + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if notice != "" {
		out += "\n" + noticeStyle.Render(notice)
	}
	return out
}

func renderColumn(col board.Column) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", col.Name, len(col.Items))))

	if len(col.Items) == 0 {
		sb.WriteString("\n" + emptyStyle.Render("empty"))
	}
	for _, it := range col.Items {
		sb.WriteString("\n" + cardStyle.Render("• "+it.Title))
		if names := assigneeNames(it.Assignees); names != "" {
			sb.WriteString("\n" + cardStyle.Render(metaStyle.Render(names)))
		}
		sb.WriteString("\n" + cardStyle.Render(metaStyle.Render(it.ID)))
	}

	return columnStyle.Render(sb.String())
}

func assigneeNames(people []board.UserProfile) string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		name := p.DisplayName
		if name == "" {
			name = p.Name
		}
		names = append(names, "@"+name)
	}
	return strings.Join(names, " ")
}
