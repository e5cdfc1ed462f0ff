package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid(t *testing.T) {
	buttons := []Button{{Label: "A", ID: "a"}, {Label: "B", ID: "b"}, {Label: "C", ID: "c"}}

	rows := Grid(buttons, 2)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 2)
	assert.Equal(t, "c", rows[1][0].ID)

	assert.Len(t, Grid(buttons, 0), 3)
	assert.Empty(t, Grid(nil, 2))
}

func TestInlineAndExtend(t *testing.T) {
	markup := Inline([]Button{{Label: "Удалить", ID: "drop", Payload: "7"}})
	Extend(markup, []Button{{Label: "Меню", ID: "menu"}})

	require.Len(t, markup.InlineKeyboard, 2)
	btn := markup.InlineKeyboard[0][0]
	assert.Equal(t, "Удалить", btn.Text)
	assert.Equal(t, "drop", btn.Unique)
	assert.Equal(t, "7", btn.Data)
	assert.Equal(t, "menu", markup.InlineKeyboard[1][0].Unique)
}
