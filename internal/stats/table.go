package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type align int

const (
	alignLeft align = iota
	alignRight
)

// column describes one text-table column.
type column struct {
	Title string
	Align align
}

// stintColumns are the columns of the sessions table. Identifiers and text
// read left to right; every measurement is right aligned so decimals line up.
var stintColumns = []column{
	{Title: "ID", Align: alignRight},
	{Title: "Started"},
	{Title: "Source"},
	{Title: "Samples", Align: alignRight},
	{Title: "Time (s)", Align: alignRight},
	{Title: "Avg DF", Align: alignRight},
	{Title: "Peak DF", Align: alignRight},
	{Title: "Avg Drag", Align: alignRight},
	{Title: "Wear FL", Align: alignRight},
	{Title: "Wear FR", Align: alignRight},
	{Title: "Wear RL", Align: alignRight},
	{Title: "Wear RR", Align: alignRight},
}

const columnGap = " "

// formatTable lays rows out under cols. Cells past the last column are
// dropped and missing cells render blank.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.Title)
	}
	for _, row := range rows {
		for i := range cols {
			if w := runewidth.StringWidth(cellAt(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	titles := make([]string, len(cols))
	for i, col := range cols {
		titles[i] = col.Title
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, formatRow(cols, titles, widths))
	for _, row := range rows {
		lines = append(lines, formatRow(cols, row, widths))
	}
	return lines
}

func formatRow(cols []column, row []string, widths []int) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = padCell(cellAt(row, i), widths[i], col.Align)
	}
	return strings.TrimRight(strings.Join(cells, columnGap), " ")
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func padCell(value string, width int, a align) string {
	if a == alignRight {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}
