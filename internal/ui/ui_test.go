package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Makepad-fr/tada/internal/model"
)

func monoTheme(t *testing.T) {
	t.Helper()
	SetTheme("mono")
	t.Cleanup(func() {
		SetColorForcing(false, false)
		SetTheme("classic")
	})
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
	assert.Equal(t, "█████ 100%", ProgressBar(3, 3, 5))
}

func TestPanel_AlignsBorders(t *testing.T) {
	monoTheme(t)
	var buf bytes.Buffer

	Panel(&buf, []string{"short", "a longer line ✔"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "+-----------------+", lines[0])
	assert.Equal(t, "| short           |", lines[1])
	assert.Equal(t, "| a longer line ✔ |", lines[2])
	assert.Equal(t, lines[0], lines[3])
}

func TestPanel_WideCharacters(t *testing.T) {
	monoTheme(t)
	var buf bytes.Buffer

	Panel(&buf, []string{"ab", "買い物", "🍞"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"+--------+",
		"| ab     |",
		"| 買い物 |",
		"| 🍞     |",
		"+--------+",
	}, lines)
}

func TestItemLines(t *testing.T) {
	monoTheme(t)

	lines := ItemLines([]model.Item{
		{ID: 1, Title: "done thing", Done: true},
		{ID: 12, Title: strings.Repeat("x", 100)},
	})

	assert.Equal(t, "#1   [x] done thing", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#12  [ ] xxx"))
	assert.True(t, strings.HasSuffix(lines[1], "..."))

	assert.Equal(t, []string{"no items"}, ItemLines(nil))
}

func TestGroupedLines(t *testing.T) {
	monoTheme(t)

	lines := GroupedLines(nil, []model.Item{{ID: 2, Title: "b", Done: true}})
	assert.Equal(t, []string{"Pending", "(none)", "", "Done", "#2   [x] b"}, lines)
}

func TestOKAndFail(t *testing.T) {
	monoTheme(t)
	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "nope")
	assert.Equal(t, "✔ added\n✖ nope\n", buf.String())
}

func TestHeader(t *testing.T) {
	monoTheme(t)
	assert.Equal(t, "Todos  x 1  - 2  Total 3", Header(1, 2, 3))
}
