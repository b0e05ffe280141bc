package action

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

//TemplateError means a notify message template could not be rendered. It is a configuration mistake made by the
//guild's operators, not a failure of the bot.
type TemplateError struct {
	Template string
	Offset   int
	Reason   string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("invalid notify format `%v` at offset %d: %v", e.Template, e.Offset, e.Reason)
}

//Variables returns the placeholders available to notify templates for msg
func Variables(msg *discordgo.Message) map[string]string {
	vars := map[string]string{
		"channel":   "<#" + msg.ChannelID + ">",
		"timestamp": msg.Timestamp.Format(time.RFC3339),
		"link":      fmt.Sprintf("https://discord.com/channels/%v/%v/%v", msg.GuildID, msg.ChannelID, msg.ID),
	}
	if msg.Author != nil {
		vars["user"] = msg.Author.Mention()
	}
	return vars
}

//Render replaces every {name} in tmpl with vars[name]. {{ and }} stand for literal braces.
func Render(tmpl string, vars map[string]string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			sb.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			sb.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", &TemplateError{Template: tmpl, Offset: i, Reason: "unterminated placeholder"}
			}
			name := tmpl[i+1 : i+1+end]
			val, ok := vars[name]
			if !ok {
				return "", &TemplateError{Template: tmpl, Offset: i, Reason: fmt.Sprintf("unknown placeholder `%v`", name)}
			}
			sb.WriteString(val)
			i += end + 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}
