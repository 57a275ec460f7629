package flow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/terra-agro/terrabot/store"
)

// cmdToday shows today's totals: admins see every user with per-user
// subtotals, workers see their own entries.
func (f *Flow) cmdToday(ctx context.Context, userID string) error {
	today := dayStart(time.Now(), f.loc)

	if f.cfg.IsAdmin(userID) {
		rows, err := f.store.StatsTodayAll(ctx, today)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return f.send(ctx, userID, "📊 Сегодня записей нет.")
		}

		parts := []string{"📊 *Сегодня (все)*:"}
		curUID := ""
		subtotal := 0
		for _, r := range rows {
			if r.UserID != curUID {
				if curUID != "" {
					parts = append(parts, fmt.Sprintf("  — Итого сотрудник: *%d* ч\n", subtotal))
				}
				curUID = r.UserID
				subtotal = 0
				who := r.UserID
				if r.FullName != nil && *r.FullName != "" {
					who = *r.FullName
				}
				parts = append(parts, fmt.Sprintf("\n👤 *%s*", who))
			}
			parts = append(parts, fmt.Sprintf("  • %s — %s: *%d* ч", r.Location, r.Activity, r.Hours))
			subtotal += r.Hours
		}
		parts = append(parts, fmt.Sprintf("  — Итого сотрудник: *%d* ч", subtotal))
		return f.send(ctx, userID, strings.Join(parts, "\n"))
	}

	rows, err := f.store.StatsRangeForUser(ctx, userID, today, today)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return f.send(ctx, userID, "📊 Сегодня у вас записей нет.")
	}

	parts := []string{"📊 *Сегодня*:"}
	total := 0
	for _, r := range rows {
		parts = append(parts, fmt.Sprintf("• %s — %s: *%d* ч", r.Location, r.Activity, r.Hours))
		total += r.Hours
	}
	parts = append(parts, fmt.Sprintf("\nИтого: *%d* ч", total))
	return f.send(ctx, userID, strings.Join(parts, "\n"))
}

// cmdMy shows the trailing 7-day window.
func (f *Flow) cmdMy(ctx context.Context, userID string) error {
	end := dayStart(time.Now(), f.loc)
	start := end.AddDate(0, 0, -6)
	header := fmt.Sprintf("📊 *Неделя* (%s–%s):", start.Format("02.01"), end.Format("02.01"))

	if f.cfg.IsAdmin(userID) {
		rows, err := f.store.StatsRangeAll(ctx, start, end)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return f.send(ctx, userID, "📊 За 7 дней записей нет.")
		}

		parts := []string{header}
		curUser := ""
		subtotal := 0
		started := false
		for _, r := range rows {
			who := "—"
			if r.FullName != nil && *r.FullName != "" {
				who = *r.FullName
			}
			if who != curUser || !started {
				if started {
					parts = append(parts, fmt.Sprintf("  — Итого сотрудник: *%d* ч\n", subtotal))
				}
				curUser = who
				subtotal = 0
				started = true
				parts = append(parts, fmt.Sprintf("\n👤 *%s*", who))
			}
			parts = append(parts, fmt.Sprintf("  • %s | %s — %s: *%d* ч",
				r.WorkDate.Format(workDateLayout), r.Location, r.Activity, r.Hours))
			subtotal += r.Hours
		}
		parts = append(parts, fmt.Sprintf("  — Итого сотрудник: *%d* ч", subtotal))
		return f.send(ctx, userID, strings.Join(parts, "\n"))
	}

	rows, err := f.store.StatsRangeForUser(ctx, userID, start, end)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return f.send(ctx, userID, "📊 За 7 дней у вас записей нет.")
	}

	perDay := make(map[string][]store.UserRangeStat)
	for _, r := range rows {
		d := r.WorkDate.Format(workDateLayout)
		perDay[d] = append(perDay[d], r)
	}
	days := make([]string, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	parts := []string{header}
	total := 0
	for _, d := range days {
		parts = append(parts, fmt.Sprintf("\n*%s*", d))
		for _, r := range perDay[d] {
			parts = append(parts, fmt.Sprintf("• %s — %s: *%d* ч", r.Location, r.Activity, r.Hours))
			total += r.Hours
		}
	}
	parts = append(parts, fmt.Sprintf("\nИтого: *%d* ч", total))
	return f.send(ctx, userID, strings.Join(parts, "\n"))
}
