package guildmodels

import "fmt"

//ModuleKind identifies a single moderation rule. The set of kinds is closed; every kind must be handled by
//settings.New, the matcher dispatcher and the module cache.
type ModuleKind string

//The moderation modules known to the bot
const (
	MassPing        ModuleKind = "mass-ping"
	Crosspost       ModuleKind = "crosspost"
	EmojiSpam       ModuleKind = "emoji-spam"
	MentionSpam     ModuleKind = "mention-spam"
	Selfbot         ModuleKind = "selfbot"
	InviteLink      ModuleKind = "invite-link"
	ChannelActivity ModuleKind = "channel-activity"
	UserActivity    ModuleKind = "user-activity"
)

var allModuleKinds = []ModuleKind{
	MassPing,
	Crosspost,
	EmojiSpam,
	MentionSpam,
	Selfbot,
	InviteLink,
	ChannelActivity,
	UserActivity,
}

//AllModuleKinds returns every module kind in declaration order
func AllModuleKinds() []ModuleKind {
	res := make([]ModuleKind, len(allModuleKinds))
	copy(res, allModuleKinds)
	return res
}

//ParseModuleKind converts a kebab-case module name into a ModuleKind
func ParseModuleKind(name string) (ModuleKind, error) {
	for _, kind := range allModuleKinds {
		if string(kind) == name {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown module `%v`", name)
}

//Valid returns true iff kind is one of the known module kinds
func (kind ModuleKind) Valid() bool {
	_, err := ParseModuleKind(string(kind))
	return err == nil
}

func (kind ModuleKind) String() string {
	return string(kind)
}

//Module contains the enabled state of one moderation module within a guild
type Module struct {
	GuildID string     `gorethink:"id[0]"`
	Kind    ModuleKind `gorethink:"id[1]"`
	Enabled bool       `gorethink:"enabled"`
}

//DefaultModule returns the state of a module which has never been configured for a guild. Unconfigured modules
//are always disabled.
func DefaultModule(gid string, kind ModuleKind) Module {
	return Module{
		GuildID: gid,
		Kind:    kind,
		Enabled: false,
	}
}

//SettingRow is a single stored (name, value) pair of a module's settings
type SettingRow struct {
	Name  string
	Value string
}
