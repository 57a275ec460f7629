package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/terra-agro/terrabot/core/logger"
	"github.com/terra-agro/terrabot/core/state"
	"github.com/terra-agro/terrabot/core/whatsapp"
	"github.com/terra-agro/terrabot/store"
)

func (f *Flow) openAdminMenu(ctx context.Context, userID string) error {
	if !f.cfg.IsAdmin(userID) {
		return f.send(ctx, userID, textNoRights)
	}
	return f.sender.SendButtons(ctx, userID, textAdminMenu, []whatsapp.Button{
		{ID: "adm:menu:activities", Title: "➕➖ Работы"},
		{ID: "adm:menu:locations", Title: "➕➖ Локации"},
		{ID: "adm:export", Title: "📤 Экспорт"},
	})
}

func (f *Flow) handleAdmin(ctx context.Context, userID, data string) error {
	if !f.cfg.IsAdmin(userID) {
		return f.send(ctx, userID, textNoRights)
	}
	switch data {
	case "adm:menu:activities":
		return f.sender.SendButtons(ctx, userID, textAdminActs, []whatsapp.Button{
			{ID: "adm:add:act", Title: "➕ Добавить"},
			{ID: "adm:del:act", Title: "➖ Удалить"},
			{ID: "menu:admin", Title: "🔙 Админ"},
		})
	case "adm:menu:locations":
		return f.sender.SendButtons(ctx, userID, textAdminLocs, []whatsapp.Button{
			{ID: "adm:add:loc", Title: "➕ Добавить"},
			{ID: "adm:del:loc", Title: "➖ Удалить"},
			{ID: "menu:admin", Title: "🔙 Админ"},
		})
	case "adm:add:act":
		f.state.SetState(userID, StateAdmWaitActAdd)
		return f.send(ctx, userID, textAskActAdd)
	case "adm:del:act":
		f.state.SetState(userID, StateAdmWaitActDel)
		return f.send(ctx, userID, textAskActDel)
	case "adm:add:loc":
		f.state.SetState(userID, StateAdmWaitLocAdd)
		return f.send(ctx, userID, textAskLocAdd)
	case "adm:del:loc":
		f.state.SetState(userID, StateAdmWaitLocDel)
		return f.send(ctx, userID, textAskLocDel)
	case "adm:export":
		return f.runExport(ctx, userID)
	}
	return f.send(ctx, userID, textStaleData)
}

// finishReferenceEdit consumes the free-text name typed after an
// admin add/remove prompt. New activities land in the manual group,
// new locations in the fields group.
func (f *Flow) finishReferenceEdit(ctx context.Context, userID string, st state.State, name string) error {
	f.state.Clear(userID)
	var err error
	switch st {
	case StateAdmWaitActAdd:
		err = f.store.AddActivity(ctx, store.GroupHand, name)
	case StateAdmWaitActDel:
		err = f.store.RemoveActivity(ctx, name)
	case StateAdmWaitLocAdd:
		err = f.store.AddLocation(ctx, store.GroupFields, name)
	case StateAdmWaitLocDel:
		err = f.store.RemoveLocation(ctx, name)
	}
	switch {
	case err == nil:
		if st == StateAdmWaitActAdd || st == StateAdmWaitLocAdd {
			return f.send(ctx, userID, textRefAdded)
		}
		return f.send(ctx, userID, textRefRemoved)
	case errors.Is(err, store.ErrDuplicate):
		return f.send(ctx, userID, textRefDuplicate)
	case errors.Is(err, store.ErrNotFound):
		return f.send(ctx, userID, textRefNotFound)
	}
	return err
}

// runExport pushes pending reports into the monthly workbook and
// pre-creates the next month's destination when its turn is close.
func (f *Flow) runExport(ctx context.Context, userID string) error {
	if f.exporter == nil {
		return f.send(ctx, userID, "ℹ️ Экспорт отключен.")
	}
	if err := f.send(ctx, userID, textExportRunning); err != nil {
		return err
	}

	count, message, err := f.exporter.ExportNow(ctx)
	if err != nil {
		logger.Error(ctx, "flow", "export.manual",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return f.send(ctx, userID, fmt.Sprintf("❌ Ошибка экспорта: %s", err))
	}

	text := "ℹ️ " + message
	if count > 0 {
		text = "✅ " + message
	}
	if created, sheetMsg, err := f.exporter.EnsureNextMonth(ctx); err == nil && created {
		text += "\n\n📅 " + sheetMsg
	}
	logger.Info(ctx, "flow", "export.manual",
		slog.Int("exported", count),
	)
	return f.send(ctx, userID, text)
}
