package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/config"
	"github.com/callummance/caretaker/guildmodels"
	"github.com/callummance/caretaker/module"
	"github.com/callummance/caretaker/sqlstore"
)

type fakePlatform struct {
	mu      sync.Mutex
	deleted []string
	sent    []string
}

func (f *fakePlatform) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, channelID+"/"+messageID)
	return nil
}

func (f *fakePlatform) SendMessage(channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, channelID+": "+content)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:         "sqlite://:memory:",
		LatencyUpdateFreq:   time.Minute,
		BroadcastCapacity:   64,
		ActionQueueCapacity: 8,
		NotifyRate:          100,
		NotifyBurst:         10,
	}
}

func newTestCaretaker(t *testing.T) *Caretaker {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	cache, err := module.PopulateCache(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	return newCaretaker(cfg, repo, cache)
}

func TestOpenRepositoryPicksBackend(t *testing.T) {
	repo, err := openRepository(context.Background(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	if _, ok := repo.(*sqlstore.Store); !ok {
		t.Errorf("got %T, want *sqlstore.Store", repo)
	}

	cfg := testConfig()
	cfg.DatabaseURL = "mongodb://localhost"
	if _, err := openRepository(context.Background(), cfg); err == nil {
		t.Error("expected an error for an unsupported database")
	}
}

func TestHandleMessageEndToEnd(t *testing.T) {
	ctx := context.Background()
	b := newTestCaretaker(t)
	m := b.Manager()
	if err := m.SetEnabled(ctx, "G", guildmodels.MassPing, true); err != nil {
		t.Fatal(err)
	}
	if err := m.AddAction(ctx, "G", guildmodels.MassPing, guildmodels.NotifyAction("mod-log", "{user} pinged everyone in {channel}")); err != nil {
		t.Fatal(err)
	}
	if err := m.AddExclusion(ctx, "G", guildmodels.MassPing, guildmodels.RoleExclusion("mods")); err != nil {
		t.Fatal(err)
	}

	platform := &fakePlatform{}
	b.start(platform)

	user := &discordgo.User{ID: "U"}
	for _, msg := range []*discordgo.Message{
		//dropped before matching
		{ID: "bot", GuildID: "G", ChannelID: "C", MentionEveryone: true, Author: &discordgo.User{ID: "B", Bot: true}},
		{ID: "dm", ChannelID: "C", MentionEveryone: true, Author: user},
		{ID: "pin", GuildID: "G", ChannelID: "C", MentionEveryone: true, Author: user, Type: discordgo.MessageTypeChannelPinnedMessage},
		//excluded
		{ID: "mod", GuildID: "G", ChannelID: "C", MentionEveryone: true, Author: &discordgo.User{ID: "M"}, Member: &discordgo.Member{Roles: []string{"mods"}}},
		//not a mass ping
		{ID: "quiet", GuildID: "G", ChannelID: "C", Content: "@everyone", Author: user},
		//matched
		{ID: "loud", GuildID: "G", ChannelID: "C", MentionEveryone: true, Author: user},
	} {
		b.HandleMessage(msg)
	}
	b.Close()

	want := "mod-log: <@U> pinged everyone in <#C>"
	if len(platform.sent) != 1 || platform.sent[0] != want {
		t.Errorf("sent %v, want [%v]", platform.sent, want)
	}
	if len(platform.deleted) != 0 {
		t.Errorf("deleted %v", platform.deleted)
	}
}

func TestHandleMessageBeforeStart(t *testing.T) {
	b := newTestCaretaker(t)
	//nobody is subscribed yet, the message is dropped without error
	b.HandleMessage(&discordgo.Message{ID: "m", GuildID: "G", ChannelID: "C", Author: &discordgo.User{ID: "U"}})
	b.Close()
}
