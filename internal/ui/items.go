package ui

import (
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
)

const maxTitle = 80

// Header is the one-line summary shown above a list.
func Header(done, pending, total int) string {
	t := Current()
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, "Todos"),
		C(t.Success, t.SymDone), done,
		C(t.Pending, t.SymPending), pending,
		C(t.Accent, "Total"), total,
	)
}

// ItemLines renders one line per item: "#id box title".
func ItemLines(items []model.Item) []string {
	t := Current()
	if len(items) == 0 {
		return []string{C(t.Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box, color := t.BoxUnchecked, t.Muted
		if it.Done {
			box, color = t.BoxChecked, t.Success
		}
		title := it.Title
		if r := []rune(title); len(r) > maxTitle {
			title = string(r[:maxTitle-3]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			Dim(fmt.Sprintf("#%-3d", it.ID)), C(color, box), title))
	}
	return out
}

// GroupedLines renders pending items, then done items, under headings.
func GroupedLines(pending, done []model.Item) []string {
	t := Current()
	section := func(name string, items []model.Item) []string {
		lines := []string{C(t.Accent, name)}
		if len(items) == 0 {
			return append(lines, C(t.Muted, "(none)"))
		}
		return append(lines, ItemLines(items)...)
	}
	lines := section("Pending", pending)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
