package bot

import (
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/broadcast"
	"github.com/sirupsen/logrus"
)

//HandleMessage is called upon every received message. Messages from bots, system messages and direct messages are
//dropped; everything else is broadcast to the matcher runners.
func (b *Caretaker) HandleMessage(msg *discordgo.Message) {
	if msg == nil || msg.Author == nil || msg.Author.Bot || !isRegular(msg) || msg.GuildID == "" {
		return
	}
	logrus.Debugf("Message processing called %v after message timestamp (%v)", time.Since(msg.Timestamp), msg.Timestamp)

	n, err := b.deps.Messages.Send(msg)
	switch {
	case errors.Is(err, broadcast.ErrNoReceivers):
		logrus.Debugf("No matcher runners are listening, dropping message %v", msg.ID)
	case err != nil:
		logrus.Errorf("Sending message to broadcast channel failed: %v", err)
	default:
		logrus.Tracef("Broadcast message %v to %d runners", msg.ID, n)
	}
}

func isRegular(msg *discordgo.Message) bool {
	return msg.Type == discordgo.MessageTypeDefault || msg.Type == discordgo.MessageTypeReply
}
