package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/terra-agro/terrabot/core/logger"
	"github.com/terra-agro/terrabot/core/whatsapp"
	"github.com/terra-agro/terrabot/store"
)

// hoursOptions are the values offered when picking hours for a
// detailed report or when editing one.
var hoursOptions = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 16, 20, 24}

func (f *Flow) openWorkMenu(ctx context.Context, userID string) error {
	u, err := f.store.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if u == nil || u.FullName == "" {
		f.state.SetState(userID, StateWaitingName)
		return f.send(ctx, userID, textAskNameShort)
	}
	f.state.SetState(userID, StatePickWorkGroup)
	return f.sender.SendButtons(ctx, userID, textPickWorkGroup, []whatsapp.Button{
		{ID: "work:grp:tech", Title: "Техника"},
		{ID: "work:grp:hand", Title: "Ручная"},
		{ID: "menu:root", Title: "🔙 Назад"},
	})
}

func (f *Flow) handleWork(ctx context.Context, userID, data string) error {
	switch {
	case strings.HasPrefix(data, "work:grp:"):
		return f.pickWorkGroup(ctx, userID, strings.TrimPrefix(data, "work:grp:"))
	case strings.HasPrefix(data, "work:act:"):
		return f.pickActivity(ctx, userID, data)
	case strings.HasPrefix(data, "work:locgrp:"):
		return f.pickLocGroup(ctx, userID, strings.TrimPrefix(data, "work:locgrp:"))
	case strings.HasPrefix(data, "work:loc:"):
		return f.pickLocation(ctx, userID, data)
	case strings.HasPrefix(data, "work:date:"):
		return f.pickDate(ctx, userID, strings.TrimPrefix(data, "work:date:"))
	case strings.HasPrefix(data, "work:hours:"):
		return f.pickHours(ctx, userID, strings.TrimPrefix(data, "work:hours:"))
	}
	return f.send(ctx, userID, textStaleData)
}

func (f *Flow) pickWorkGroup(ctx context.Context, userID, kind string) error {
	grp := store.GroupTech
	if kind != "tech" {
		kind = "hand"
		grp = store.GroupHand
	}
	f.state.SetTemp(userID, tempWorkKind, kind)
	f.state.SetTemp(userID, tempWorkGrp, grp)
	f.state.SetState(userID, StatePickActivity)
	return f.showActivityPage(ctx, userID, 0)
}

// showActivityPage lists activities of the chosen group. Buttons carry
// numeric ids; names are resolved from the store on selection.
func (f *Flow) showActivityPage(ctx context.Context, userID string, n int) error {
	kind, ok := f.state.GetTempString(userID, tempWorkKind)
	if !ok {
		return f.send(ctx, userID, textStale)
	}
	grp := store.GroupTech
	if kind == "hand" {
		grp = store.GroupHand
	}
	acts, err := f.store.ListActivitiesWithID(ctx, grp)
	if err != nil {
		return err
	}
	items := make([]pageItem, 0, len(acts))
	for _, a := range acts {
		items = append(items, pageItem{
			Title: a.Name,
			Data:  fmt.Sprintf("work:act:%s:%d", kind, a.ID),
		})
	}
	return f.sendPage(ctx, userID, textPickActivity, items, n, "acts", "menu:work")
}

func (f *Flow) pickActivity(ctx context.Context, userID, data string) error {
	parts := strings.Split(data, ":")
	if len(parts) != 4 {
		return f.send(ctx, userID, textStaleData)
	}
	id, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return f.send(ctx, userID, textStaleData)
	}

	act, err := f.store.GetActivity(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			f.state.Clear(userID)
			return f.send(ctx, userID, textActivityGone)
		}
		return err
	}

	f.state.SetTemp(userID, tempWorkGrp, act.Grp)
	f.state.SetTemp(userID, tempWorkActivity, act.Name)
	f.state.SetState(userID, StatePickLocGroup)
	return f.sender.SendButtons(ctx, userID, textPickLocGroup, []whatsapp.Button{
		{ID: "work:locgrp:fields", Title: "Поля"},
		{ID: "work:locgrp:ware", Title: "Склад"},
		{ID: "menu:work", Title: "🔙 Назад"},
	})
}

func (f *Flow) pickLocGroup(ctx context.Context, userID, lg string) error {
	if lg == "ware" {
		// Single warehouse location, skip straight to the date.
		f.state.SetTemp(userID, tempLocGrp, store.GroupWarehouse)
		f.state.SetTemp(userID, tempLocation, "Склад")
		return f.showDateButtons(ctx, userID)
	}
	f.state.SetTemp(userID, tempLocKind, "fields")
	f.state.SetState(userID, StatePickLocation)
	return f.showLocationPage(ctx, userID, 0)
}

func (f *Flow) showLocationPage(ctx context.Context, userID string, n int) error {
	locs, err := f.store.ListLocationsWithID(ctx, store.GroupFields)
	if err != nil {
		return err
	}
	items := make([]pageItem, 0, len(locs))
	for _, l := range locs {
		items = append(items, pageItem{
			Title: l.Name,
			Data:  fmt.Sprintf("work:loc:fields:%d", l.ID),
		})
	}
	return f.sendPage(ctx, userID, textPickLocation, items, n, "locs", "menu:work")
}

func (f *Flow) pickLocation(ctx context.Context, userID, data string) error {
	parts := strings.Split(data, ":")
	if len(parts) != 4 {
		return f.send(ctx, userID, textStaleData)
	}
	id, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return f.send(ctx, userID, textStaleData)
	}

	loc, err := f.store.GetLocation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			f.state.Clear(userID)
			return f.send(ctx, userID, textLocationGone)
		}
		return err
	}

	f.state.SetTemp(userID, tempLocGrp, loc.Grp)
	f.state.SetTemp(userID, tempLocation, loc.Name)
	return f.showDateButtons(ctx, userID)
}

// showDateButtons offers today and yesterday; any other date can be
// typed as text while the state is pick_date.
func (f *Flow) showDateButtons(ctx context.Context, userID string) error {
	f.state.SetState(userID, StatePickDate)
	today := dayStart(time.Now(), f.loc)
	yesterday := today.AddDate(0, 0, -1)
	text := textPickDate + "\n\nИли отправьте дату текстом, например *21.07*."
	return f.sender.SendButtons(ctx, userID, text, []whatsapp.Button{
		{ID: "work:date:" + today.Format(workDateLayout), Title: "Сегодня"},
		{ID: "work:date:" + yesterday.Format(workDateLayout), Title: "Вчера"},
		{ID: "menu:work", Title: "🔙 Назад"},
	})
}

func (f *Flow) pickDate(ctx context.Context, userID, raw string) error {
	if _, err := time.ParseInLocation(workDateLayout, raw, f.loc); err != nil {
		return f.send(ctx, userID, textStaleData)
	}
	f.state.SetTemp(userID, tempWorkDate, raw)
	f.state.SetState(userID, StatePickHours)
	return f.showHoursPage(ctx, userID, 0)
}

// finishTypedDate handles a date typed as text in the pick_date state.
func (f *Flow) finishTypedDate(ctx context.Context, userID, text string) error {
	d, ok := parseFlexibleDate(text, f.loc)
	if !ok {
		return f.send(ctx, userID, "Не понял дату. Пример: *21.07* или *21.07.2026*.")
	}
	f.state.SetTemp(userID, tempWorkDate, d.Format(workDateLayout))
	f.state.SetState(userID, StatePickHours)
	return f.showHoursPage(ctx, userID, 0)
}

func (f *Flow) showHoursPage(ctx context.Context, userID string, n int) error {
	items := make([]pageItem, 0, len(hoursOptions))
	for _, h := range hoursOptions {
		items = append(items, pageItem{
			Title: strconv.Itoa(h),
			Data:  fmt.Sprintf("work:hours:%d", h),
		})
	}
	return f.sendPage(ctx, userID, textPickHours, items, n, "hours", "menu:work")
}

func (f *Flow) pickHours(ctx context.Context, userID, raw string) error {
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return f.send(ctx, userID, textStaleData)
	}

	grp, okGrp := f.state.GetTempString(userID, tempWorkGrp)
	activity, okAct := f.state.GetTempString(userID, tempWorkActivity)
	locGrp, okLG := f.state.GetTempString(userID, tempLocGrp)
	location, okLoc := f.state.GetTempString(userID, tempLocation)
	rawDate, okDate := f.state.GetTempString(userID, tempWorkDate)
	if !okGrp || !okAct || !okLG || !okLoc || !okDate {
		f.state.Clear(userID)
		return f.send(ctx, userID, textRestart)
	}
	workDate, err := time.ParseInLocation(workDateLayout, rawDate, f.loc)
	if err != nil {
		f.state.Clear(userID)
		return f.send(ctx, userID, textRestart)
	}

	already, err := f.store.SumHoursForDate(ctx, userID, workDate, 0)
	if err != nil {
		return err
	}
	if already+hours > store.MaxDailyHours {
		return f.send(ctx, userID, textCapExceeded(already, hours, store.MaxDailyHours-already))
	}

	u, err := f.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	id, err := f.store.InsertReport(ctx, &store.Report{
		UserID:      userID,
		RegName:     u.FullName,
		Location:    location,
		LocationGrp: locGrp,
		Activity:    activity,
		ActivityGrp: grp,
		WorkDate:    workDate,
		Hours:       hours,
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "flow", "report.saved",
		slog.Int64("report_id", id),
		slog.String("work_date", rawDate),
		slog.Int("hours", hours),
	)

	f.state.Clear(userID)
	if err := f.send(ctx, userID, textSaved(rawDate, location, activity, hours, id)); err != nil {
		return err
	}
	return f.showMainMenu(ctx, userID, u)
}
