package flow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/terra-agro/terrabot/core/whatsapp"
)

func makeItems(n int) []pageItem {
	items := make([]pageItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, pageItem{
			Title: fmt.Sprintf("item %d", i),
			Data:  fmt.Sprintf("pick:%d", i),
		})
	}
	return items
}

func TestPaginateFirstPageShowsNextArrow(t *testing.T) {
	p := paginate(makeItems(5), 0, "acts", "menu:work")

	assert.Equal(t, 3, p.Total)
	assert.Len(t, p.Buttons, 3)
	assert.Equal(t, "pick:0", p.Buttons[0].ID)
	assert.Equal(t, "pick:1", p.Buttons[1].ID)
	assert.Equal(t, "nav:acts:1", p.Buttons[2].ID)
	assert.Equal(t, "➡️", p.Buttons[2].Title)
}

func TestPaginateMiddlePagePrefersPrevArrow(t *testing.T) {
	p := paginate(makeItems(5), 1, "acts", "menu:work")

	assert.Len(t, p.Buttons, 3)
	assert.Equal(t, "nav:acts:0", p.Buttons[2].ID)
	for _, b := range p.Buttons {
		assert.NotEqual(t, "➡️", b.Title, "middle page must not show both arrows")
	}
}

func TestPaginateLastPageHasBackSlot(t *testing.T) {
	p := paginate(makeItems(5), 2, "acts", "menu:work")

	assert.Len(t, p.Buttons, 3)
	assert.Equal(t, "pick:4", p.Buttons[0].ID)
	assert.Equal(t, "nav:acts:1", p.Buttons[1].ID)
	assert.Equal(t, "menu:work", p.Buttons[2].ID)
}

func TestPaginateClampsPageIndex(t *testing.T) {
	items := makeItems(5)

	high := paginate(items, 99, "acts", "menu:work")
	assert.Equal(t, 2, high.Index)

	low := paginate(items, -7, "acts", "menu:work")
	assert.Equal(t, 0, low.Index)
}

func TestPaginateSinglePage(t *testing.T) {
	p := paginate(makeItems(2), 0, "acts", "menu:work")

	assert.Equal(t, 1, p.Total)
	assert.Len(t, p.Buttons, 3)
	assert.Equal(t, "menu:work", p.Buttons[2].ID)
	assert.Empty(t, p.suffix())
}

func TestPaginateSuffixOnMultiplePages(t *testing.T) {
	p := paginate(makeItems(5), 1, "acts", "menu:work")
	assert.Equal(t, "\n\n_Страница 2 из 3_", p.suffix())
}

func TestPaginateNeverExceedsButtonLimit(t *testing.T) {
	for n := 1; n <= 30; n++ {
		items := makeItems(n)
		total := (n + pageCapacity - 1) / pageCapacity
		for pg := 0; pg < total; pg++ {
			p := paginate(items, pg, "acts", "menu:work")
			assert.LessOrEqual(t, len(p.Buttons), whatsapp.MaxButtons,
				"n=%d page=%d", n, pg)
		}
	}
}

func TestPaginateDeterministic(t *testing.T) {
	items := makeItems(7)
	a := paginate(items, 1, "locs", "menu:work")
	b := paginate(items, 1, "locs", "menu:work")
	assert.Equal(t, a, b)
}
