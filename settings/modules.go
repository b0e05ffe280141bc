package settings

import "github.com/callummance/caretaker/guildmodels"

//Crosspost configures the duplicate cross-posting detector. Use NewCrosspost to get a usable value.
type Crosspost struct {
	table
	MinimumLength uint
	Threshold     int16
	Timeout       uint32
}

//NewCrosspost returns crosspost settings with every field at its default
func NewCrosspost() *Crosspost {
	s := &Crosspost{}
	s.table = table{
		{
			name:        "minimum_length",
			description: "Ignore messages below this length",
			def:         "5",
			value:       uintValue{p: &s.MinimumLength},
		},
		{
			name:        "threshold",
			description: "The similarity threshold. Must be an integer between -128 and 128 where 128 means entirely similar, i.e. equal",
			def:         "80",
			value:       int16Value{p: &s.Threshold, min: -128, max: 128},
		},
		{
			name:        "timeout",
			description: "Ignore older messages than this timeout. The value is in seconds",
			def:         "3600",
			value:       uint32Value{p: &s.Timeout},
		},
	}
	s.resetAll()
	return s
}

func (*Crosspost) Kind() guildmodels.ModuleKind { return guildmodels.Crosspost }

//EmojiSpam configures the emoji spam detector. Use NewEmojiSpam to get a usable value.
type EmojiSpam struct {
	table
	MaxEmojis uint
}

//NewEmojiSpam returns emoji spam settings with every field at its default
func NewEmojiSpam() *EmojiSpam {
	s := &EmojiSpam{}
	s.table = table{
		{
			name:        "max_emojis",
			description: "Match messages containing at least this many emojis",
			def:         "10",
			value:       uintValue{p: &s.MaxEmojis},
		},
	}
	s.resetAll()
	return s
}

func (*EmojiSpam) Kind() guildmodels.ModuleKind { return guildmodels.EmojiSpam }

//MentionSpam configures the mention spam detector. Use NewMentionSpam to get a usable value.
type MentionSpam struct {
	table
	MaxMentions uint
}

//NewMentionSpam returns mention spam settings with every field at its default
func NewMentionSpam() *MentionSpam {
	s := &MentionSpam{}
	s.table = table{
		{
			name:        "max_mentions",
			description: "Match messages mentioning at least this many distinct users and roles",
			def:         "5",
			value:       uintValue{p: &s.MaxMentions},
		},
	}
	s.resetAll()
	return s
}

func (*MentionSpam) Kind() guildmodels.ModuleKind { return guildmodels.MentionSpam }

//The remaining modules have nothing to tune. They are still distinct types so a matcher can never be handed the
//settings of another module.

//MassPing has no settings
type MassPing struct{ table }

func (*MassPing) Kind() guildmodels.ModuleKind { return guildmodels.MassPing }

//Selfbot has no settings
type Selfbot struct{ table }

func (*Selfbot) Kind() guildmodels.ModuleKind { return guildmodels.Selfbot }

//InviteLink has no settings
type InviteLink struct{ table }

func (*InviteLink) Kind() guildmodels.ModuleKind { return guildmodels.InviteLink }

//ChannelActivity has no settings
type ChannelActivity struct{ table }

func (*ChannelActivity) Kind() guildmodels.ModuleKind { return guildmodels.ChannelActivity }

//UserActivity has no settings
type UserActivity struct{ table }

func (*UserActivity) Kind() guildmodels.ModuleKind { return guildmodels.UserActivity }
