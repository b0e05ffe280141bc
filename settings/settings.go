//Package settings contains the typed, per-module configuration values along with their defaults and descriptions.
package settings

import (
	"fmt"

	"github.com/callummance/caretaker/guildmodels"
)

//Settings is the typed configuration for a single module kind. Every module kind has exactly one implementation,
//and the set of implementations is closed.
type Settings interface {
	//Kind returns the module kind these settings belong to
	Kind() guildmodels.ModuleKind
	//GetAll returns every setting along with its current value, in declaration order
	GetAll() []guildmodels.SettingRow
	//DescriptionFor returns a human-readable description of a setting
	DescriptionFor(name string) (string, error)
	//DefaultFor returns the default value of a setting
	DefaultFor(name string) (string, error)
	//Set parses value and stores it in the named setting
	Set(name, value string) error
	//Reset restores the named setting to its default
	Reset(name string) error

	lookup(name string) (*field, bool)
}

//New returns the default settings for a module kind
func New(kind guildmodels.ModuleKind) (Settings, error) {
	switch kind {
	case guildmodels.MassPing:
		return &MassPing{}, nil
	case guildmodels.Crosspost:
		return NewCrosspost(), nil
	case guildmodels.EmojiSpam:
		return NewEmojiSpam(), nil
	case guildmodels.MentionSpam:
		return NewMentionSpam(), nil
	case guildmodels.Selfbot:
		return &Selfbot{}, nil
	case guildmodels.InviteLink:
		return &InviteLink{}, nil
	case guildmodels.ChannelActivity:
		return &ChannelActivity{}, nil
	case guildmodels.UserActivity:
		return &UserActivity{}, nil
	default:
		return nil, fmt.Errorf("no settings exist for unknown module kind `%v`", kind)
	}
}

//FromRows builds the settings for a module kind out of its stored rows. Settings missing from rows keep their
//defaults. A row naming a setting the kind does not have means the stored data is corrupt and is rejected.
func FromRows(kind guildmodels.ModuleKind, rows []guildmodels.SettingRow) (Settings, error) {
	s, err := New(kind)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		f, ok := s.lookup(row.Name)
		if !ok {
			return nil, &InvalidFieldError{Kind: kind, Name: row.Name}
		}
		if err := f.set(row.Value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

//table implements the Settings methods over a list of named fields. Settings structs embed it and fill it in from
//their constructor so each field points at the matching struct member.
type table []*field

func (t table) GetAll() []guildmodels.SettingRow {
	res := make([]guildmodels.SettingRow, 0, len(t))
	for _, f := range t {
		res = append(res, guildmodels.SettingRow{Name: f.name, Value: f.value.String()})
	}
	return res
}

func (t table) DescriptionFor(name string) (string, error) {
	f, ok := t.lookup(name)
	if !ok {
		return "", &NoSuchSettingError{Name: name}
	}
	return f.description, nil
}

func (t table) DefaultFor(name string) (string, error) {
	f, ok := t.lookup(name)
	if !ok {
		return "", &NoSuchSettingError{Name: name}
	}
	return f.def, nil
}

func (t table) Set(name, value string) error {
	f, ok := t.lookup(name)
	if !ok {
		return &NoSuchSettingError{Name: name}
	}
	return f.set(value)
}

func (t table) Reset(name string) error {
	f, ok := t.lookup(name)
	if !ok {
		return &NoSuchSettingError{Name: name}
	}
	f.reset()
	return nil
}

func (t table) lookup(name string) (*field, bool) {
	for _, f := range t {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

func (t table) resetAll() {
	for _, f := range t {
		f.reset()
	}
}
