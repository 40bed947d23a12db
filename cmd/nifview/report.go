package main

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8A33D"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F25D5D"))
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

var reportHeaders = []string{
	"shape", "kind", "layout", "verts", "tris", "bones", "influences", "skinning", "bounds", "issues",
}

// renderReport formats one file's inspection result.
func renderReport(r fileReport) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Path))
	b.WriteString(faintStyle.Render(fmt.Sprintf("  block version %d", r.Version)))
	b.WriteString("\n")

	if r.Err != nil {
		b.WriteString(errStyle.Render(r.Err.Error()))
		return b.String()
	}
	for _, w := range r.Warnings {
		b.WriteString(warnStyle.Render("warning: " + w))
		b.WriteString("\n")
	}

	rows := make([][]string, 0, len(r.Shapes))
	for _, s := range r.Shapes {
		rows = append(rows, shapeRow(s))
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(reportHeaders...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		})
	b.WriteString(t.String())
	return b.String()
}

func shapeRow(s shapeReport) []string {
	name := s.Name
	if name == "" {
		name = "-"
	}
	skinning := "rigid"
	switch {
	case s.Skinning:
		skinning = "skinned"
	case s.Skinned:
		skinning = "bind pose"
	}
	issues := "none"
	if s.Diag.Total() > 0 {
		issues = s.Diag.String()
	}
	return []string{
		name,
		s.Kind.String(),
		s.Layout.String(),
		strconv.Itoa(s.Vertices),
		strconv.Itoa(s.Triangles),
		strconv.Itoa(s.Bones),
		strconv.Itoa(s.Influences),
		skinning,
		fmt.Sprintf("(%.3g, %.3g, %.3g) r=%.3g", s.Bounds.Center.X, s.Bounds.Center.Y, s.Bounds.Center.Z, s.Bounds.Radius),
		issues,
	}
}
