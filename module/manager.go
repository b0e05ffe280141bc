//Package module manages per-guild moderation module configuration: the enabled-state cache read on every message,
//exclusion sets, and the write-through operations used to change configuration.
package module

import (
	"context"
	"fmt"
	"sync"

	"github.com/callummance/caretaker/guildmodels"
	"github.com/callummance/caretaker/settings"
	"github.com/sirupsen/logrus"
)

const (
	//MaxActions is the number of actions that may be configured per module per guild
	MaxActions int = 5
	//MaxExclusions is the number of exclusions that may be configured per module per guild
	MaxExclusions int = 10
)

//Manager performs configuration changes. Every change is written to the repository first and only then applied to
//the cache, so the cache never reports state that failed to persist.
type Manager struct {
	repo  Repository
	cache *Cache
	//serializes write-through updates so the cache and repository agree on the last writer
	writeMu sync.Mutex
}

//NewManager creates a Manager writing through repo into cache
func NewManager(repo Repository, cache *Cache) *Manager {
	return &Manager{
		repo:  repo,
		cache: cache,
	}
}

//Cache returns the module cache the manager keeps up to date
func (m *Manager) Cache() *Cache {
	return m.cache
}

//Module returns the current state of a module from the cache
func (m *Manager) Module(gid string, kind guildmodels.ModuleKind) (guildmodels.Module, error) {
	if err := checkKind(kind); err != nil {
		return guildmodels.Module{}, err
	}
	return m.cache.Get(gid, kind), nil
}

//ModuleStatus returns the state of every module kind for a guild, in registry order
func (m *Manager) ModuleStatus(gid string) []guildmodels.Module {
	kinds := guildmodels.AllModuleKinds()
	res := make([]guildmodels.Module, 0, len(kinds))
	for _, kind := range kinds {
		res = append(res, m.cache.Get(gid, kind))
	}
	return res
}

//SetEnabled enables or disables a module for a guild
func (m *Manager) SetEnabled(ctx context.Context, gid string, kind guildmodels.ModuleKind, enabled bool) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := m.repo.SetModuleEnabled(ctx, gid, kind, enabled); err != nil {
		logrus.Warnf("Failed to store enabled state %v for module %v in guild %v: %v", enabled, kind, gid, err)
		return fmt.Errorf("failed to store enabled state for module %v: %w", kind, err)
	}
	m.cache.Update(guildmodels.Module{GuildID: gid, Kind: kind, Enabled: enabled})
	logrus.Infof("Module %v in guild %v is now enabled=%v", kind, gid, enabled)
	return nil
}

//Settings loads the current settings of a module
func (m *Manager) Settings(ctx context.Context, gid string, kind guildmodels.ModuleKind) (settings.Settings, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	rows, err := m.repo.GetSettingRows(ctx, gid, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for module %v: %w", kind, err)
	}
	return settings.FromRows(kind, rows)
}

//SetSetting changes one setting of a module
func (m *Manager) SetSetting(ctx context.Context, gid string, kind guildmodels.ModuleKind, name, value string) error {
	return m.updateSettings(ctx, gid, kind, func(s settings.Settings) error {
		return s.Set(name, value)
	})
}

//ResetSetting restores one setting of a module to its default
func (m *Manager) ResetSetting(ctx context.Context, gid string, kind guildmodels.ModuleKind, name string) error {
	return m.updateSettings(ctx, gid, kind, func(s settings.Settings) error {
		return s.Reset(name)
	})
}

func (m *Manager) updateSettings(ctx context.Context, gid string, kind guildmodels.ModuleKind, update func(settings.Settings) error) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	s, err := m.Settings(ctx, gid, kind)
	if err != nil {
		return err
	}
	if err := update(s); err != nil {
		return err
	}
	if err := m.repo.SetSettingRows(ctx, gid, kind, s.GetAll()); err != nil {
		logrus.Warnf("Failed to store settings for module %v in guild %v: %v", kind, gid, err)
		return fmt.Errorf("failed to store settings for module %v: %w", kind, err)
	}
	return nil
}

//Exclusions loads the exclusion set of a module
func (m *Manager) Exclusions(ctx context.Context, gid string, kind guildmodels.ModuleKind) (Exclusions, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	excls, err := m.repo.GetExclusions(ctx, gid, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load exclusions for module %v: %w", kind, err)
	}
	return Exclusions(excls), nil
}

//AddExclusion exempts a user or role from a module. Duplicates and exclusions past MaxExclusions are rejected.
func (m *Manager) AddExclusion(ctx context.Context, gid string, kind guildmodels.ModuleKind, excl guildmodels.Exclusion) error {
	if _, err := guildmodels.ParseExclusionKind(string(excl.Kind)); err != nil || excl.ID == "" {
		return &ArgumentError{Kind: InvalidExclusion, Value: excl.String()}
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	excls, err := m.Exclusions(ctx, gid, kind)
	if err != nil {
		return err
	}
	switch {
	case len(excls) >= MaxExclusions:
		return &ArgumentError{Kind: ExclusionLimit, Count: len(excls), Limit: MaxExclusions}
	case excls.Contains(excl):
		return &ArgumentError{Kind: ExclusionAlreadyExists}
	}
	if err := m.repo.AddExclusion(ctx, gid, kind, excl); err != nil {
		logrus.Warnf("Failed to add exclusion %v to module %v in guild %v: %v", excl, kind, gid, err)
		return fmt.Errorf("failed to add exclusion to module %v: %w", kind, err)
	}
	return nil
}

//RemoveExclusion removes an exclusion from a module. Removing an exclusion which does not exist is rejected.
func (m *Manager) RemoveExclusion(ctx context.Context, gid string, kind guildmodels.ModuleKind, excl guildmodels.Exclusion) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	excls, err := m.Exclusions(ctx, gid, kind)
	if err != nil {
		return err
	}
	if !excls.Contains(excl) {
		return &ArgumentError{Kind: NoSuchExclusion}
	}
	if err := m.repo.RemoveExclusion(ctx, gid, kind, excl); err != nil {
		logrus.Warnf("Failed to remove exclusion %v from module %v in guild %v: %v", excl, kind, gid, err)
		return fmt.Errorf("failed to remove exclusion from module %v: %w", kind, err)
	}
	return nil
}

//Actions loads the actions of a module in insertion order
func (m *Manager) Actions(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.Action, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	actions, err := m.repo.GetActions(ctx, gid, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load actions for module %v: %w", kind, err)
	}
	return actions, nil
}

//AddAction appends an action to a module. Notify actions need a message template; remove-message actions ignore
//any channel or message given.
func (m *Manager) AddAction(ctx context.Context, gid string, kind guildmodels.ModuleKind, action guildmodels.Action) error {
	switch action.Kind {
	case guildmodels.RemoveMessage:
		action = guildmodels.RemoveMessageAction()
	case guildmodels.Notify:
		if action.Message == "" {
			return &ArgumentError{Kind: MissingMessage}
		}
		action = guildmodels.NotifyAction(action.Channel, action.Message)
	default:
		return &ArgumentError{Kind: InvalidAction, Value: string(action.Kind)}
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	actions, err := m.Actions(ctx, gid, kind)
	if err != nil {
		return err
	}
	if len(actions) >= MaxActions {
		return &ArgumentError{Kind: ActionLimit, Count: len(actions), Limit: MaxActions}
	}
	if err := m.repo.AddAction(ctx, gid, kind, action); err != nil {
		logrus.Warnf("Failed to add %v action to module %v in guild %v: %v", action.Kind, kind, gid, err)
		return fmt.Errorf("failed to add action to module %v: %w", kind, err)
	}
	return nil
}

//RemoveAction removes the action at index in the module's action list. The index is resolved against the list as
//it is stored when RemoveAction runs, so callers should list the actions again before every removal; an index
//taken from an older listing addresses whichever action now sits at that position.
func (m *Manager) RemoveAction(ctx context.Context, gid string, kind guildmodels.ModuleKind, index int) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	actions, err := m.Actions(ctx, gid, kind)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(actions) {
		return &ArgumentError{Kind: IndexOutOfRange, Index: index}
	}
	if err := m.repo.RemoveAction(ctx, gid, kind, actions[index].ID); err != nil {
		logrus.Warnf("Failed to remove action %d from module %v in guild %v: %v", index, kind, gid, err)
		return fmt.Errorf("failed to remove action from module %v: %w", kind, err)
	}
	return nil
}

func checkKind(kind guildmodels.ModuleKind) error {
	if !kind.Valid() {
		return &ArgumentError{Kind: InvalidModule, Value: string(kind)}
	}
	return nil
}
