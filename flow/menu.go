package flow

import (
	"context"
	"errors"

	"github.com/terra-agro/terrabot/core/whatsapp"
	"github.com/terra-agro/terrabot/store"
)

// cmdStart registers a new user and asks for a name, or shows the
// main menu when the user is already known.
func (f *Flow) cmdStart(ctx context.Context, userID string) error {
	u, err := f.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		if err := f.store.UpsertUser(ctx, userID, "", f.cfg.Timezone); err != nil {
			return err
		}
		u = &store.User{UserID: userID}
	} else if err != nil {
		return err
	}
	if u.FullName == "" {
		f.state.SetState(userID, StateWaitingName)
		return f.send(ctx, userID, textAskName)
	}
	return f.showMainMenu(ctx, userID, u)
}

func (f *Flow) cmdMenu(ctx context.Context, userID string) error {
	u, err := f.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return f.cmdStart(ctx, userID)
		}
		return err
	}
	return f.showMainMenu(ctx, userID, u)
}

func (f *Flow) cmdHelp(ctx context.Context, userID string) error {
	return f.send(ctx, userID, textHelp)
}

func (f *Flow) cmdCancel(ctx context.Context, userID string) error {
	f.state.Clear(userID)
	if err := f.send(ctx, userID, textCancelled); err != nil {
		return err
	}
	return f.cmdMenu(ctx, userID)
}

func (f *Flow) showMainMenu(ctx context.Context, userID string, u *store.User) error {
	name := u.FullName
	if name == "" {
		name = userID
	}
	return f.sender.SendButtons(ctx, userID, textMainMenu(name), []whatsapp.Button{
		{ID: "menu:work", Title: "🚜 Работа"},
		{ID: "menu:stats", Title: "📊 Статистика"},
		{ID: "menu:more", Title: "Ещё..."},
	})
}

// showMoreMenu pages over the secondary actions; the admin entry is
// only visible to admins.
func (f *Flow) showMoreMenu(ctx context.Context, userID string, n int) error {
	items := []pageItem{
		{Title: "🔄 Смена", Data: "menu:shift"},
		{Title: "📝 Перепись", Data: "menu:edit"},
		{Title: "✏️ Имя", Data: "menu:name"},
	}
	if f.cfg.IsAdmin(userID) {
		items = append(items, pageItem{Title: "⚙️ Админ", Data: "menu:admin"})
	}
	return f.sendPage(ctx, userID, textMoreMenu, items, n, "more", "menu:root")
}

func (f *Flow) openStatsMenu(ctx context.Context, userID string) error {
	return f.sender.SendButtons(ctx, userID, textPickPeriod, []whatsapp.Button{
		{ID: "stats:today", Title: "Сегодня"},
		{ID: "stats:week", Title: "Неделя"},
		{ID: "menu:root", Title: "🔙 Назад"},
	})
}

// finishName completes the waiting_name state. Short or single-word
// input re-prompts without leaving the state.
func (f *Flow) finishName(ctx context.Context, userID, text string) error {
	if len([]rune(text)) < 3 || !containsSpace(text) {
		return f.send(ctx, userID, textNameInvalid)
	}

	isNew := true
	if old, err := f.store.GetUser(ctx, userID); err == nil && old.FullName != "" {
		isNew = false
	}
	if err := f.store.UpsertUser(ctx, userID, text, f.cfg.Timezone); err != nil {
		return err
	}
	f.state.Clear(userID)

	reply := textRegistered(text)
	if !isNew {
		reply = textRenamed(text)
	}
	if err := f.send(ctx, userID, reply); err != nil {
		return err
	}
	return f.showMainMenu(ctx, userID, &store.User{UserID: userID, FullName: text})
}

func containsSpace(s string) bool {
	for _, r := range s {
		if r == ' ' {
			return true
		}
	}
	return false
}
