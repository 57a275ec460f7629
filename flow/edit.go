package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terra-agro/terrabot/core/whatsapp"
	"github.com/terra-agro/terrabot/store"
)

// openEditList starts the edit flow over reports created in the last
// 24 hours, one record per page.
func (f *Flow) openEditList(ctx context.Context, userID string) error {
	rows, err := f.store.RecentReports(ctx, userID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return f.send(ctx, userID, textNoRecentRecords)
	}
	f.state.SetState(userID, StateViewingEdit)
	return f.renderEditPage(ctx, userID, rows, 0)
}

// showEditPage re-reads the record list so navigation reflects
// deletions made since the page was rendered.
func (f *Flow) showEditPage(ctx context.Context, userID string, n int) error {
	rows, err := f.store.RecentReports(ctx, userID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		if err := f.send(ctx, userID, textNoRecords); err != nil {
			return err
		}
		return f.cmdMenu(ctx, userID)
	}
	return f.renderEditPage(ctx, userID, rows, n)
}

func (f *Flow) renderEditPage(ctx context.Context, userID string, rows []store.Report, n int) error {
	total := len(rows)
	if n < 0 {
		n = 0
	}
	if n > total-1 {
		n = total - 1
	}
	r := rows[n]
	d := r.WorkDate.Format(workDateLayout)

	text := fmt.Sprintf("📝 *Запись %d из %d*\n\n"+
		"ID: `#%d`\n"+
		"Дата: *%s*\n"+
		"Место: *%s*\n"+
		"Работа: *%s*\n"+
		"Часы: *%d*\n"+
		"Создана: _%s_\n\n"+
		"Листайте стрелками ⬅️/➡️, чтобы посмотреть другие записи.",
		n+1, total, r.ID, d, r.Location, r.Activity, r.Hours,
		r.CreatedAt.In(f.loc).Format("2006-01-02 15:04"))

	buttons := []whatsapp.Button{
		{ID: fmt.Sprintf("edit:chg:%d:%s", r.ID, d), Title: "🖊 Править"},
		{ID: fmt.Sprintf("edit:del:%d", r.ID), Title: "🗑 Удалить"},
	}
	if total > 1 {
		if n > 0 {
			buttons = append(buttons, whatsapp.Button{
				ID:    fmt.Sprintf("nav:edit_records:%d", n-1),
				Title: "⬅️",
			})
		} else {
			buttons = append(buttons, whatsapp.Button{
				ID:    fmt.Sprintf("nav:edit_records:%d", n+1),
				Title: "➡️",
			})
		}
	}
	if len(buttons) < whatsapp.MaxButtons {
		buttons = append(buttons, whatsapp.Button{ID: "menu:root", Title: "🔙 Меню"})
	}
	return f.sender.SendButtons(ctx, userID, text, buttons)
}

func (f *Flow) handleEdit(ctx context.Context, userID, data string) error {
	switch {
	case strings.HasPrefix(data, "edit:del:"):
		return f.deleteRecord(ctx, userID, strings.TrimPrefix(data, "edit:del:"))
	case strings.HasPrefix(data, "edit:chg:"):
		return f.askNewHours(ctx, userID, data)
	case strings.HasPrefix(data, "edit:h:"):
		return f.applyNewHours(ctx, userID, strings.TrimPrefix(data, "edit:h:"))
	}
	return f.send(ctx, userID, textStaleData)
}

func (f *Flow) deleteRecord(ctx context.Context, userID, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return f.send(ctx, userID, textBadCommand)
	}

	if err := f.store.DeleteReport(ctx, id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return f.send(ctx, userID, textDeleteFailed)
		}
		return err
	}

	rows, err := f.store.RecentReports(ctx, userID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		f.state.Clear(userID)
		return f.send(ctx, userID, textDeleted)
	}
	return f.renderEditPage(ctx, userID, rows, 0)
}

// askNewHours transitions to edit_hours for one record. The record id
// and date travel in the callback data and are pinned in the session.
func (f *Flow) askNewHours(ctx context.Context, userID, data string) error {
	parts := strings.SplitN(data, ":", 4)
	if len(parts) != 4 {
		return f.send(ctx, userID, textStaleData)
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return f.send(ctx, userID, textStaleData)
	}
	workDate := parts[3]

	f.state.SetTemp(userID, tempEditID, id)
	f.state.SetTemp(userID, tempEditDate, workDate)
	f.state.SetState(userID, StateEditHours)
	return f.showEditHoursPage(ctx, userID, 0)
}

func (f *Flow) showEditHoursPage(ctx context.Context, userID string, n int) error {
	id, okID := f.state.GetTempInt64(userID, tempEditID)
	workDate, okDate := f.state.GetTempString(userID, tempEditDate)
	if !okID || !okDate {
		return f.send(ctx, userID, textSessionStale)
	}
	items := make([]pageItem, 0, len(hoursOptions))
	for _, h := range hoursOptions {
		items = append(items, pageItem{
			Title: strconv.Itoa(h),
			Data:  fmt.Sprintf("edit:h:%d", h),
		})
	}
	return f.sendPage(ctx, userID, textEditHoursPrompt(id, workDate), items, n, "edit_hours", "menu:edit")
}

// applyNewHours validates the daily cap excluding the edited record
// itself, then updates it.
func (f *Flow) applyNewHours(ctx context.Context, userID, raw string) error {
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return f.send(ctx, userID, textStaleData)
	}
	id, okID := f.state.GetTempInt64(userID, tempEditID)
	rawDate, okDate := f.state.GetTempString(userID, tempEditDate)
	if !okID || !okDate {
		return f.send(ctx, userID, textSessionStale)
	}
	workDate, err := time.ParseInLocation(workDateLayout, rawDate, f.loc)
	if err != nil {
		return f.send(ctx, userID, textSessionStale)
	}

	already, err := f.store.SumHoursForDate(ctx, userID, workDate, id)
	if err != nil {
		return err
	}
	if already+hours > store.MaxDailyHours {
		return f.send(ctx, userID, textCapExceededEdit(already, hours, store.MaxDailyHours-already))
	}

	if err := f.store.UpdateReportHours(ctx, id, userID, hours); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return f.send(ctx, userID, textUpdateFailed)
		}
		return err
	}

	f.state.Clear(userID)
	rows, err := f.store.RecentReports(ctx, userID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return f.send(ctx, userID, textUpdatedEmpty)
	}
	f.state.SetState(userID, StateViewingEdit)
	if err := f.send(ctx, userID, textUpdated); err != nil {
		return err
	}
	return f.renderEditPage(ctx, userID, rows, 0)
}
