package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terra-agro/terrabot/core/whatsapp"
	"github.com/terra-agro/terrabot/store"
)

// shiftGroup marks reports logged through the quick shift flow, which
// stores the shift title in the location column.
const shiftGroup = "смена"

var quickWorkTypes = map[string]string{
	"work_field":    "Поле",
	"work_zucchini": "Кабачок",
	"work_potato":   "Картошка",
	"work_other":    "Другое",
}

var quickShifts = map[string]string{
	"shift_1": "Смена 1 (8-16)",
	"shift_2": "Смена 2 (16-00)",
	"shift_3": "Смена 3 (00-8)",
}

var quickHours = map[string]int{
	"hours_4":  4,
	"hours_6":  6,
	"hours_8":  8,
	"hours_12": 12,
}

// startQuickFlow begins the list-driven shift report for today.
func (f *Flow) startQuickFlow(ctx context.Context, userID string) error {
	u, err := f.store.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if u == nil || u.FullName == "" {
		f.state.SetState(userID, StateWaitingName)
		return f.send(ctx, userID, textAskNameShort)
	}
	return f.showQuickWorkList(ctx, userID)
}

func (f *Flow) showQuickWorkList(ctx context.Context, userID string) error {
	f.state.SetState(userID, StateSelectWorkType)
	sections := []whatsapp.ListSection{{
		Title: "Доступные работы",
		Rows: []whatsapp.ListRow{
			{ID: "work_field", Title: "🌾 Поле", Description: "Работа на поле"},
			{ID: "work_zucchini", Title: "🥒 Кабачок", Description: "Работа с кабачками"},
			{ID: "work_potato", Title: "🥔 Картошка", Description: "Работа с картошкой"},
			{ID: "work_other", Title: "📦 Другое", Description: "Другой тип работы"},
		},
	}}
	return f.sender.SendList(ctx, userID, textQuickPickWork, textQuickWorkButton, sections)
}

func (f *Flow) showQuickShiftList(ctx context.Context, userID string) error {
	f.state.SetState(userID, StateSelectShift)
	work, _ := f.state.GetTempString(userID, tempQuickWork)
	text := fmt.Sprintf("✅ Работа выбрана: %s\n\n⏰ Теперь выберите смену:", work)
	sections := []whatsapp.ListSection{{
		Title: "Доступные смены",
		Rows: []whatsapp.ListRow{
			{ID: "shift_1", Title: "☀️ Смена 1 (8-16)", Description: "Дневная смена с 08:00 до 16:00"},
			{ID: "shift_2", Title: "🌆 Смена 2 (16-00)", Description: "Вечерняя смена с 16:00 до 00:00"},
			{ID: "shift_3", Title: "🌙 Смена 3 (00-8)", Description: "Ночная смена с 00:00 до 08:00"},
		},
	}}
	return f.sender.SendList(ctx, userID, text, textQuickShiftButton, sections)
}

func (f *Flow) showQuickHoursList(ctx context.Context, userID string) error {
	f.state.SetState(userID, StateSelectHours)
	work, _ := f.state.GetTempString(userID, tempQuickWork)
	shift, _ := f.state.GetTempString(userID, tempQuickShift)
	text := fmt.Sprintf("✅ Работа: %s\n✅ Смена: %s\n\n⏱️ Выберите количество часов:", work, shift)
	sections := []whatsapp.ListSection{{
		Title: "Количество часов",
		Rows: []whatsapp.ListRow{
			{ID: "hours_4", Title: "4 часа", Description: "Отработано 4 часа"},
			{ID: "hours_6", Title: "6 часов", Description: "Отработано 6 часов"},
			{ID: "hours_8", Title: "8 часов", Description: "Отработано 8 часов"},
			{ID: "hours_12", Title: "12 часов", Description: "Отработано 12 часов"},
		},
	}}
	return f.sender.SendList(ctx, userID, text, textQuickHoursButton, sections)
}

func (f *Flow) showQuickConfirmation(ctx context.Context, userID string) error {
	f.state.SetState(userID, StateConfirmSave)
	work, _ := f.state.GetTempString(userID, tempQuickWork)
	shift, _ := f.state.GetTempString(userID, tempQuickShift)
	hours, _ := f.state.GetTempInt64(userID, tempQuickHours)
	text := fmt.Sprintf("📝 Проверьте данные перед сохранением:\n\n"+
		"▫️ Работа: %s\n"+
		"▫️ Смена: %s\n"+
		"▫️ Часов: %d\n\n"+
		"Все верно?", work, shift, hours)
	return f.sender.SendButtons(ctx, userID, text, []whatsapp.Button{
		{ID: "confirm_yes", Title: "✅ Подтвердить"},
		{ID: "confirm_no", Title: "❌ Отмена"},
	})
}

func (f *Flow) handleQuick(ctx context.Context, userID, data string) error {
	st := f.state.GetState(userID)
	switch {
	case strings.HasPrefix(data, "work_"):
		if st != StateSelectWorkType {
			return f.quickLost(ctx, userID)
		}
		name, ok := quickWorkTypes[data]
		if !ok {
			if err := f.send(ctx, userID, "Ошибка: неизвестный тип работы."); err != nil {
				return err
			}
			return f.showQuickWorkList(ctx, userID)
		}
		f.state.SetTemp(userID, tempQuickWork, name)
		return f.showQuickShiftList(ctx, userID)

	case strings.HasPrefix(data, "shift_"):
		if st != StateSelectShift {
			return f.quickLost(ctx, userID)
		}
		title, ok := quickShifts[data]
		if !ok {
			if err := f.send(ctx, userID, "Ошибка: неизвестная смена."); err != nil {
				return err
			}
			return f.showQuickShiftList(ctx, userID)
		}
		f.state.SetTemp(userID, tempQuickShift, title)
		return f.showQuickHoursList(ctx, userID)

	case strings.HasPrefix(data, "hours_"):
		if st != StateSelectHours {
			return f.quickLost(ctx, userID)
		}
		hours, ok := quickHours[data]
		if !ok {
			if err := f.send(ctx, userID, "Ошибка: неизвестное количество часов."); err != nil {
				return err
			}
			return f.showQuickHoursList(ctx, userID)
		}
		f.state.SetTemp(userID, tempQuickHours, int64(hours))
		return f.showQuickConfirmation(ctx, userID)

	case data == "confirm_yes":
		return f.saveQuickReport(ctx, userID)

	case data == "confirm_no":
		f.state.Clear(userID)
		if err := f.send(ctx, userID, textQuickCancelled); err != nil {
			return err
		}
		return f.cmdMenu(ctx, userID)
	}
	return f.send(ctx, userID, textStaleData)
}

func (f *Flow) quickLost(ctx context.Context, userID string) error {
	if err := f.send(ctx, userID, "Произошла ошибка. Начните сначала."); err != nil {
		return err
	}
	f.state.Clear(userID)
	return f.cmdMenu(ctx, userID)
}

// saveQuickReport persists the confirmed shift report for today,
// subject to the same daily cap as detailed reports.
func (f *Flow) saveQuickReport(ctx context.Context, userID string) error {
	work, okWork := f.state.GetTempString(userID, tempQuickWork)
	shift, okShift := f.state.GetTempString(userID, tempQuickShift)
	hours, okHours := f.state.GetTempInt64(userID, tempQuickHours)
	if !okWork || !okShift || !okHours {
		f.state.Clear(userID)
		if err := f.send(ctx, userID, textQuickIncomplete); err != nil {
			return err
		}
		return f.cmdMenu(ctx, userID)
	}

	today := dayStart(time.Now(), f.loc)
	already, err := f.store.SumHoursForDate(ctx, userID, today, 0)
	if err != nil {
		return err
	}
	if already+int(hours) > store.MaxDailyHours {
		return f.send(ctx, userID, textCapExceeded(already, int(hours), store.MaxDailyHours-already))
	}

	u, err := f.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := f.store.InsertReport(ctx, &store.Report{
		UserID:      userID,
		RegName:     u.FullName,
		Location:    shift,
		LocationGrp: shiftGroup,
		Activity:    work,
		ActivityGrp: shiftGroup,
		WorkDate:    today,
		Hours:       int(hours),
	}); err != nil {
		return err
	}

	f.state.Clear(userID)
	text := fmt.Sprintf("✅ Запись успешно сохранена!\n\n"+
		"📋 Работа: %s\n"+
		"⏰ Смена: %s\n"+
		"⏱️ Часов: %d\n\n"+
		"Спасибо! Возвращаю в главное меню...", work, shift, hours)
	if err := f.send(ctx, userID, text); err != nil {
		return err
	}
	return f.showMainMenu(ctx, userID, u)
}
