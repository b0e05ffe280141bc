//Package action runs the remedial actions configured for a module once its matcher has matched a message.
package action

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/guildmodels"
	"golang.org/x/time/rate"
)

//Platform is the part of the chat platform actions act upon
type Platform interface {
	DeleteMessage(channelID, messageID string) error
	SendMessage(channelID, content string) error
}

//Limiter spaces out notifications sent to each channel so a burst of matches cannot flood it
type Limiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	channels map[string]*rate.Limiter
}

//NewLimiter allows up to burst notifications per channel at once, refilling at perSecond
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		channels: make(map[string]*rate.Limiter),
	}
}

//Wait blocks until a notification may be sent to channelID. A nil Limiter never blocks.
func (l *Limiter) Wait(ctx context.Context, channelID string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	lim, ok := l.channels[channelID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.channels[channelID] = lim
	}
	l.mu.Unlock()
	return lim.Wait(ctx)
}

//Execute performs a single action in response to msg
func Execute(ctx context.Context, p Platform, limiter *Limiter, a guildmodels.Action, msg *discordgo.Message) error {
	switch a.Kind {
	case guildmodels.RemoveMessage:
		if err := p.DeleteMessage(msg.ChannelID, msg.ID); err != nil {
			return fmt.Errorf("failed to delete message %v in channel %v: %w", msg.ID, msg.ChannelID, err)
		}
		return nil
	case guildmodels.Notify:
		if a.Message == "" {
			return errors.New("notify action has no message")
		}
		content, err := Render(a.Message, Variables(msg))
		if err != nil {
			return err
		}
		target := a.Channel
		if target == "" {
			target = msg.ChannelID
		}
		if err := limiter.Wait(ctx, target); err != nil {
			return fmt.Errorf("gave up waiting to notify channel %v: %w", target, err)
		}
		if err := p.SendMessage(target, content); err != nil {
			return fmt.Errorf("failed to notify channel %v: %w", target, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown action kind `%v`", a.Kind)
	}
}
