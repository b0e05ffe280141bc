package matcher

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/guildmodels"
	"github.com/callummance/caretaker/settings"
	"github.com/sirupsen/logrus"
)

//MassPing matches messages which ping @everyone or @here
type MassPing struct{}

func (MassPing) Kind() guildmodels.ModuleKind { return guildmodels.MassPing }

//IsMatch relies on the mention flag set by Discord, so the literal text "@everyone" posted by somebody without the
//permission to use it does not match.
func (MassPing) IsMatch(_ *settings.MassPing, msg *discordgo.Message) (bool, error) {
	return msg.MentionEveryone, nil
}

//Selfbot matches messages whose first embed is a rich embed. Embeds generated by Discord's link unfurling are never
//rich, so a user message carrying one was almost certainly posted through the API directly.
type Selfbot struct{}

func (Selfbot) Kind() guildmodels.ModuleKind { return guildmodels.Selfbot }

func (Selfbot) IsMatch(_ *settings.Selfbot, msg *discordgo.Message) (bool, error) {
	if len(msg.Embeds) == 0 || msg.Embeds[0] == nil {
		return false, nil
	}
	return msg.Embeds[0].Type == discordgo.EmbedTypeRich, nil
}

var inviteHosts = map[string]bool{
	"discord.gg":     true,
	"discord.com":    true,
	"discordapp.com": true,
}

//invitePlaceholder is the last path segment of a bare invite URL such as discord.com/invite
const invitePlaceholder = "invite"

//InviteLink matches messages containing a Discord server invite
type InviteLink struct{}

func (InviteLink) Kind() guildmodels.ModuleKind { return guildmodels.InviteLink }

func (InviteLink) IsMatch(_ *settings.InviteLink, msg *discordgo.Message) (bool, error) {
	for _, word := range strings.Fields(msg.Content) {
		u, err := url.Parse(word)
		if err != nil || u.Host == "" {
			continue
		}
		if !inviteHosts[strings.ToLower(u.Hostname())] {
			continue
		}
		segments := strings.Split(u.Path, "/")
		last := segments[len(segments)-1]
		if last != "" && last != invitePlaceholder {
			logrus.Debugf("%v looks like an invite", u)
			return true, nil
		}
	}
	return false, nil
}

var customEmojiRegex = regexp.MustCompile(`<a?:\w+:\d+>`)

//EmojiSpam matches messages containing too many emojis. Custom guild emojis and unicode symbols are both counted.
type EmojiSpam struct{}

func (EmojiSpam) Kind() guildmodels.ModuleKind { return guildmodels.EmojiSpam }

//IsMatch never matches while max_emojis is 0
func (EmojiSpam) IsMatch(s *settings.EmojiSpam, msg *discordgo.Message) (bool, error) {
	if s.MaxEmojis == 0 {
		return false, nil
	}
	return countEmojis(msg.Content) >= s.MaxEmojis, nil
}

func countEmojis(content string) uint {
	var n uint
	rest := customEmojiRegex.ReplaceAllStringFunc(content, func(string) string {
		n++
		return " "
	})
	for _, r := range rest {
		if unicode.Is(unicode.So, r) {
			n++
		}
	}
	return n
}

//MentionSpam matches messages mentioning too many distinct users and roles
type MentionSpam struct{}

func (MentionSpam) Kind() guildmodels.ModuleKind { return guildmodels.MentionSpam }

//IsMatch never matches while max_mentions is 0
func (MentionSpam) IsMatch(s *settings.MentionSpam, msg *discordgo.Message) (bool, error) {
	if s.MaxMentions == 0 {
		return false, nil
	}
	seen := make(map[string]bool)
	for _, u := range msg.Mentions {
		if u != nil {
			seen["u"+u.ID] = true
		}
	}
	for _, r := range msg.MentionRoles {
		seen["r"+r] = true
	}
	return uint(len(seen)) >= s.MaxMentions, nil
}
