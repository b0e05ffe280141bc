//Package matcher evaluates every incoming message against each moderation module. Each module kind has one
//Matcher, and each Matcher is driven by its own runner goroutine subscribed to the message broadcast.
package matcher

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/guildmodels"
	"github.com/callummance/caretaker/settings"
)

//Matcher decides whether a message breaks one module's rule. IsMatch is only ever called from a single goroutine,
//so stateful matchers need no locking. It must not touch persistence or the module cache; the runner resolves
//everything it needs beforehand.
type Matcher[S settings.Settings] interface {
	Kind() guildmodels.ModuleKind
	IsMatch(s S, msg *discordgo.Message) (bool, error)
}

//Match is a message which one module matched, on its way to the action pipeline
type Match struct {
	//ID correlates the log lines of one match across the runner and the action pipeline
	ID      string
	Kind    guildmodels.ModuleKind
	Message *discordgo.Message
	Matched time.Time
}

//InternalError means the matcher machinery is wired up wrongly. It is always a bug.
type InternalError struct {
	Kind   guildmodels.ModuleKind
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %v matcher: %v", e.Kind, e.Reason)
}
