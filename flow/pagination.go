package flow

import (
	"fmt"
	"strconv"

	"github.com/terra-agro/terrabot/core/whatsapp"
)

// pageCapacity is how many item buttons fit on a page. WhatsApp allows
// three reply buttons per message; the third slot is reserved for a
// navigation arrow or a back button.
const pageCapacity = 2

// pageItem is one selectable entry in a paginated button list.
type pageItem struct {
	Title string
	Data  string
}

// page holds one rendered page of a paginated list.
type page struct {
	Buttons []whatsapp.Button
	Index   int
	Total   int
}

// paginate renders page n of items. At most one navigation arrow is
// shown (previous wins over next), then backData takes the remaining
// slot if one is free. The result never exceeds three buttons.
func paginate(items []pageItem, n int, navKey, backData string) page {
	total := (len(items) + pageCapacity - 1) / pageCapacity
	if total < 1 {
		total = 1
	}
	if n < 0 {
		n = 0
	}
	if n > total-1 {
		n = total - 1
	}

	start := n * pageCapacity
	end := start + pageCapacity
	if end > len(items) {
		end = len(items)
	}

	var buttons []whatsapp.Button
	for _, it := range items[start:end] {
		buttons = append(buttons, whatsapp.Button{ID: it.Data, Title: it.Title})
	}

	if n > 0 {
		buttons = append(buttons, whatsapp.Button{
			ID:    fmt.Sprintf("nav:%s:%d", navKey, n-1),
			Title: "⬅️",
		})
	} else if n < total-1 {
		buttons = append(buttons, whatsapp.Button{
			ID:    fmt.Sprintf("nav:%s:%d", navKey, n+1),
			Title: "➡️",
		})
	}

	if backData != "" && len(buttons) < whatsapp.MaxButtons {
		buttons = append(buttons, whatsapp.Button{ID: backData, Title: "🔙 Назад"})
	}
	if len(buttons) > whatsapp.MaxButtons {
		buttons = buttons[:whatsapp.MaxButtons]
	}

	return page{Buttons: buttons, Index: n, Total: total}
}

// parsePageIndex parses the page number carried in nav callback data.
func parsePageIndex(s string) (int, error) {
	return strconv.Atoi(s)
}

// suffix returns the page indicator appended to the message body, or
// an empty string for single-page lists.
func (p page) suffix() string {
	if p.Total <= 1 {
		return ""
	}
	return fmt.Sprintf("\n\n_Страница %d из %d_", p.Index+1, p.Total)
}
