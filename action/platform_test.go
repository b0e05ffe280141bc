package action

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/guildmodels"
)

type sentMessage struct {
	channel string
	content string
}

type fakePlatform struct {
	mu        sync.Mutex
	deleted   []string
	sent      []sentMessage
	deleteErr error
}

func (f *fakePlatform) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, channelID+"/"+messageID)
	return nil
}

func (f *fakePlatform) SendMessage(channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channel: channelID, content: content})
	return nil
}

var testMessage = &discordgo.Message{
	ID:        "m",
	ChannelID: "c",
	GuildID:   "g",
	Author:    &discordgo.User{ID: "u"},
}

func TestExecuteRemoveMessage(t *testing.T) {
	p := &fakePlatform{}
	if err := Execute(context.Background(), p, nil, guildmodels.RemoveMessageAction(), testMessage); err != nil {
		t.Fatal(err)
	}
	if len(p.deleted) != 1 || p.deleted[0] != "c/m" {
		t.Errorf("deleted %v", p.deleted)
	}

	p.deleteErr = errors.New("unknown message")
	if err := Execute(context.Background(), p, nil, guildmodels.RemoveMessageAction(), testMessage); err == nil {
		t.Error("expected delete failure to be returned")
	}
}

func TestExecuteNotify(t *testing.T) {
	tests := []struct {
		name   string
		action guildmodels.Action
		want   sentMessage
	}{
		{"same channel", guildmodels.NotifyAction("", "{user} was naughty"), sentMessage{"c", "<@u> was naughty"}},
		{"log channel", guildmodels.NotifyAction("log", "{link}"), sentMessage{"log", "https://discord.com/channels/g/c/m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePlatform{}
			if err := Execute(context.Background(), p, nil, tt.action, testMessage); err != nil {
				t.Fatal(err)
			}
			if len(p.sent) != 1 || p.sent[0] != tt.want {
				t.Errorf("sent %v, want %v", p.sent, tt.want)
			}
		})
	}
}

func TestExecuteNotifyBadTemplate(t *testing.T) {
	p := &fakePlatform{}
	err := Execute(context.Background(), p, nil, guildmodels.NotifyAction("", "{whoami}"), testMessage)
	var tmplErr *TemplateError
	if !errors.As(err, &tmplErr) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
	if len(p.sent) != 0 {
		t.Error("nothing should be sent for a broken template")
	}
}

func TestLimiterIsPerChannel(t *testing.T) {
	l := NewLimiter(0.001, 1)
	ctx := context.Background()
	if err := l.Wait(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := l.Wait(ctx, "b"); err != nil {
		t.Fatalf("other channel should not be limited: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(short, "a"); err == nil {
		t.Error("expected second notification to channel a to be held back")
	}
}
