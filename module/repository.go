package module

import (
	"context"

	"github.com/callummance/caretaker/guildmodels"
)

//Repository is the persistence interface consumed by the moderation core. Both the RethinkDB backend in db and
//the SQL backends in sqlstore implement it.
//
//GetModule returns nil if the module was never configured. GetActions returns actions in insertion order.
type Repository interface {
	ModuleLister
	GetModule(ctx context.Context, gid string, kind guildmodels.ModuleKind) (*guildmodels.Module, error)
	SetModuleEnabled(ctx context.Context, gid string, kind guildmodels.ModuleKind, enabled bool) error

	GetSettingRows(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.SettingRow, error)
	SetSettingRows(ctx context.Context, gid string, kind guildmodels.ModuleKind, rows []guildmodels.SettingRow) error

	GetExclusions(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.Exclusion, error)
	AddExclusion(ctx context.Context, gid string, kind guildmodels.ModuleKind, excl guildmodels.Exclusion) error
	RemoveExclusion(ctx context.Context, gid string, kind guildmodels.ModuleKind, excl guildmodels.Exclusion) error

	GetActions(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.Action, error)
	AddAction(ctx context.Context, gid string, kind guildmodels.ModuleKind, action guildmodels.Action) error
	RemoveAction(ctx context.Context, gid string, kind guildmodels.ModuleKind, actionID string) error

	Close() error
}
