package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	coreconfig "github.com/terra-agro/terrabot/core/config"
	"github.com/terra-agro/terrabot/core/logger"
	"github.com/terra-agro/terrabot/core/state"
	"github.com/terra-agro/terrabot/core/whatsapp"
	"github.com/terra-agro/terrabot/core/whatsapp/webhook"
	"github.com/terra-agro/terrabot/store"
)

// Exporter pushes accumulated reports into the monthly workbook.
type Exporter interface {
	ExportNow(ctx context.Context) (int, string, error)
	EnsureNextMonth(ctx context.Context) (bool, string, error)
}

// Options carries the dependencies a Flow needs.
type Options struct {
	Sender   whatsapp.Sender
	Store    *store.Store
	State    state.Manager
	Config   *coreconfig.Config
	Exporter Exporter
	Location *time.Location
}

// Flow drives the conversation state machine. It implements
// webhook.Dispatcher and is safe for concurrent use as long as the
// injected state manager is.
type Flow struct {
	sender   whatsapp.Sender
	store    *store.Store
	state    state.Manager
	cfg      *coreconfig.Config
	exporter Exporter
	loc      *time.Location
	reg      *Registry
}

// New builds a Flow and registers its text commands.
func New(opts Options) *Flow {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	f := &Flow{
		sender:   opts.Sender,
		store:    opts.Store,
		state:    opts.State,
		cfg:      opts.Config,
		exporter: opts.Exporter,
		loc:      loc,
		reg:      NewRegistry(),
	}
	f.reg.RegisterCommand("start", Command{
		Handler:     f.cmdStart,
		Description: "Регистрация и главное меню",
		Aliases:     []string{"старт"},
	})
	f.reg.RegisterCommand("menu", Command{
		Handler:     f.cmdMenu,
		Description: "Главное меню",
		Aliases:     []string{"меню"},
	})
	f.reg.RegisterCommand("today", Command{
		Handler:     f.cmdToday,
		Description: "Статистика за сегодня",
		Aliases:     []string{"сегодня"},
	})
	f.reg.RegisterCommand("my", Command{
		Handler:     f.cmdMy,
		Description: "Статистика за неделю",
		Aliases:     []string{"мои"},
	})
	f.reg.RegisterCommand("help", Command{
		Handler:     f.cmdHelp,
		Description: "Справка",
		Aliases:     []string{"помощь"},
	})
	f.reg.RegisterCommand("cancel", Command{
		Handler:     f.cmdCancel,
		Description: "Отменить текущее действие",
		Aliases:     []string{"отмена", "stop", "стоп"},
		Hidden:      true,
	})
	return f
}

// HandleEvent routes one inbound webhook event through the state
// machine. Mark-as-read is best effort and never fails the dispatch.
func (f *Flow) HandleEvent(ctx context.Context, ev webhook.Event) error {
	if ev.MsgID != "" {
		if err := f.sender.MarkRead(ctx, ev.MsgID); err != nil {
			logger.Debug(ctx, "flow", "flow.mark_read",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
	if ev.IsCallback() {
		return f.handleCallback(ctx, ev.From, ev.CallbackID())
	}
	return f.handleText(ctx, ev.From, ev.Text)
}

func (f *Flow) handleText(ctx context.Context, userID, text string) error {
	text = strings.TrimSpace(text)
	if _, cmd, ok := f.reg.Lookup(text); ok {
		if cmd.AdminOnly && !f.cfg.IsAdmin(userID) {
			return f.send(ctx, userID, textNoRights)
		}
		return cmd.Handler(ctx, userID)
	}

	st := f.state.GetState(userID)
	logger.Debug(ctx, "flow", "flow.text",
		slog.String("state", string(st)),
	)
	switch st {
	case StateWaitingName:
		return f.finishName(ctx, userID, text)
	case StatePickDate:
		return f.finishTypedDate(ctx, userID, text)
	case StateAdmWaitActAdd, StateAdmWaitActDel, StateAdmWaitLocAdd, StateAdmWaitLocDel:
		return f.finishReferenceEdit(ctx, userID, st, text)
	}

	u, err := f.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return f.cmdStart(ctx, userID)
		}
		return err
	}
	return f.showMainMenu(ctx, userID, u)
}

func (f *Flow) handleCallback(ctx context.Context, userID, data string) error {
	logger.Debug(ctx, "flow", "flow.callback",
		slog.String("cb_id", data),
		slog.String("state", string(f.state.GetState(userID))),
	)
	switch {
	case strings.HasPrefix(data, "nav:"):
		return f.handleNav(ctx, userID, data)
	case data == "menu:root":
		f.state.Clear(userID)
		return f.cmdMenu(ctx, userID)
	case data == "menu:more":
		return f.showMoreMenu(ctx, userID, 0)
	case data == "menu:work":
		return f.openWorkMenu(ctx, userID)
	case data == "menu:shift":
		return f.startQuickFlow(ctx, userID)
	case data == "menu:stats":
		return f.openStatsMenu(ctx, userID)
	case data == "menu:edit":
		return f.openEditList(ctx, userID)
	case data == "menu:name":
		f.state.SetState(userID, StateWaitingName)
		return f.send(ctx, userID, textAskNameChange)
	case data == "menu:admin":
		return f.openAdminMenu(ctx, userID)
	case data == "stats:today":
		return f.cmdToday(ctx, userID)
	case data == "stats:week":
		return f.cmdMy(ctx, userID)
	case strings.HasPrefix(data, "work:"):
		return f.handleWork(ctx, userID, data)
	case strings.HasPrefix(data, "edit:"):
		return f.handleEdit(ctx, userID, data)
	case strings.HasPrefix(data, "adm:"):
		return f.handleAdmin(ctx, userID, data)
	case strings.HasPrefix(data, "work_"),
		strings.HasPrefix(data, "shift_"),
		strings.HasPrefix(data, "hours_"),
		data == "confirm_yes", data == "confirm_no":
		return f.handleQuick(ctx, userID, data)
	}

	logger.Warn(ctx, "flow", "flow.callback.unknown",
		slog.String("cb_id", data),
	)
	f.state.Clear(userID)
	if err := f.send(ctx, userID, textStale); err != nil {
		return err
	}
	return f.cmdMenu(ctx, userID)
}

// handleNav re-renders a paginated list on its new page. Lists are
// re-read from the store so navigation survives a state backend swap.
func (f *Flow) handleNav(ctx context.Context, userID, data string) error {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 3 {
		return f.send(ctx, userID, textStale)
	}
	n, err := parsePageIndex(parts[2])
	if err != nil {
		return f.send(ctx, userID, textStale)
	}
	switch parts[1] {
	case "more":
		return f.showMoreMenu(ctx, userID, n)
	case "acts":
		return f.showActivityPage(ctx, userID, n)
	case "locs":
		return f.showLocationPage(ctx, userID, n)
	case "hours":
		return f.showHoursPage(ctx, userID, n)
	case "edit_records":
		return f.showEditPage(ctx, userID, n)
	case "edit_hours":
		return f.showEditHoursPage(ctx, userID, n)
	}
	return f.send(ctx, userID, textStale)
}

func (f *Flow) send(ctx context.Context, userID, text string) error {
	return f.sender.SendText(ctx, userID, text)
}

func (f *Flow) sendPage(ctx context.Context, userID, body string, items []pageItem, n int, navKey, backData string) error {
	if len(items) == 0 {
		return f.send(ctx, userID, body+"\n\nСписок пуст.")
	}
	p := paginate(items, n, navKey, backData)
	return f.sender.SendButtons(ctx, userID, body+p.suffix(), p.Buttons)
}
