package flow

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/terra-agro/terrabot/core/logger"
)

// HandlerFunc handles a text command from a user.
type HandlerFunc func(ctx context.Context, userID string) error

// Command is a text command with its handler and metadata.
type Command struct {
	Handler     HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Registry maps command names and aliases to handlers. Names are
// matched case-insensitively against the whole message text.
type Registry struct {
	commands map[string]Command
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// RegisterCommand adds a new command under its canonical name.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	if r == nil || name == "" || cmd.Handler == nil {
		logger.Warn(context.Background(), "flow", "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	name = strings.ToLower(name)
	if _, exists := r.commands[name]; exists {
		logger.Warn(context.Background(), "flow", "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// Lookup searches for a command by name or alias and returns the
// canonical key with metadata if found.
func (r *Registry) Lookup(name string) (string, Command, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "/")
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if strings.ToLower(alias) == name {
				return key, cmd, true
			}
		}
	}
	return "", Command{}, false
}

// ListCommands returns sorted canonical names, optionally filtering
// out hidden and admin-only commands.
func (r *Registry) ListCommands(visibleOnly bool) []string {
	var list []string
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}
