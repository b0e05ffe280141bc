package matcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/broadcast"
	"github.com/callummance/caretaker/guildmodels"
	"github.com/callummance/caretaker/module"
	"github.com/callummance/caretaker/settings"
)

type fakeSource struct {
	mu    sync.Mutex
	rows  []guildmodels.SettingRow
	excls []guildmodels.Exclusion
	err   error
}

func (f *fakeSource) GetSettingRows(context.Context, string, guildmodels.ModuleKind) ([]guildmodels.SettingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows, f.err
}

func (f *fakeSource) GetExclusions(context.Context, string, guildmodels.ModuleKind) ([]guildmodels.Exclusion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.excls, f.err
}

//spyMatcher counts its invocations and matches everything
type spyMatcher struct {
	mu    sync.Mutex
	kind  guildmodels.ModuleKind
	calls int
}

func (s *spyMatcher) Kind() guildmodels.ModuleKind { return s.kind }

func (s *spyMatcher) IsMatch(_ *settings.MassPing, _ *discordgo.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return true, nil
}

func (s *spyMatcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func guildMessage(id, author string, roles ...string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		GuildID:   "guild",
		ChannelID: "channel",
		Content:   "some message content",
		Author:    &discordgo.User{ID: author},
		Member:    &discordgo.Member{Roles: roles},
	}
}

func enabledCache(kinds ...guildmodels.ModuleKind) *module.Cache {
	c := module.NewCache(nil)
	for _, kind := range kinds {
		c.Update(guildmodels.Module{GuildID: "guild", Kind: kind, Enabled: true})
	}
	return c
}

func TestDisabledModuleNeverEvaluates(t *testing.T) {
	spy := &spyMatcher{kind: guildmodels.MassPing}
	d := NewDispatcher(module.NewCache(nil), &fakeSource{}, nil)
	r := newMatcherRunner[*settings.MassPing](spy, d)

	for i := 0; i < 20; i++ {
		matched, err := r.evaluate(context.Background(), guildMessage("m", "u"))
		if matched || err != nil {
			t.Fatalf("evaluate() = %v, %v", matched, err)
		}
	}
	//explicitly disabled behaves the same as never configured
	d.cache.Update(guildmodels.Module{GuildID: "guild", Kind: guildmodels.MassPing, Enabled: false})
	r.evaluate(context.Background(), guildMessage("m", "u"))

	if spy.Calls() != 0 {
		t.Errorf("matcher called %d times for a disabled module", spy.Calls())
	}
}

func TestExcludedAuthorsNeverEvaluate(t *testing.T) {
	spy := &spyMatcher{kind: guildmodels.MassPing}
	source := &fakeSource{excls: []guildmodels.Exclusion{
		guildmodels.UserExclusion("excluded-user"),
		guildmodels.RoleExclusion("excluded-role"),
	}}
	d := NewDispatcher(enabledCache(guildmodels.MassPing), source, nil)
	r := newMatcherRunner[*settings.MassPing](spy, d)

	tests := []struct {
		name string
		msg  *discordgo.Message
		want bool
	}{
		{"excluded user", guildMessage("1", "excluded-user"), false},
		{"excluded user with roles", guildMessage("2", "excluded-user", "other-role"), false},
		{"excluded role", guildMessage("3", "user", "excluded-role"), false},
		{"excluded role among others", guildMessage("4", "user", "other-role", "excluded-role"), false},
		{"not excluded", guildMessage("5", "user", "other-role"), true},
	}
	for _, tt := range tests {
		before := spy.Calls()
		matched, err := r.evaluate(context.Background(), tt.msg)
		if err != nil || matched != tt.want {
			t.Errorf("%v: evaluate() = %v, %v, want %v", tt.name, matched, err, tt.want)
		}
		if reached := spy.Calls() > before; reached != tt.want {
			t.Errorf("%v: matcher reached = %v, want %v", tt.name, reached, tt.want)
		}
	}
}

func TestMessageWithoutGuildIsIgnored(t *testing.T) {
	spy := &spyMatcher{kind: guildmodels.MassPing}
	d := NewDispatcher(enabledCache(guildmodels.MassPing), &fakeSource{}, nil)
	r := newMatcherRunner[*settings.MassPing](spy, d)

	msg := guildMessage("dm", "user")
	msg.GuildID = ""
	matched, err := r.evaluate(context.Background(), msg)
	if matched || err != nil || spy.Calls() != 0 {
		t.Errorf("evaluate() = %v, %v with %d calls", matched, err, spy.Calls())
	}
}

func TestSourceErrorsAreNotMatches(t *testing.T) {
	spy := &spyMatcher{kind: guildmodels.MassPing}
	d := NewDispatcher(enabledCache(guildmodels.MassPing), &fakeSource{err: errors.New("connection refused")}, nil)
	r := newMatcherRunner[*settings.MassPing](spy, d)

	matched, err := r.evaluate(context.Background(), guildMessage("m", "u"))
	if matched || err == nil || spy.Calls() != 0 {
		t.Errorf("evaluate() = %v, %v with %d calls", matched, err, spy.Calls())
	}
}

func TestSettingsMismatchIsInternalError(t *testing.T) {
	//a matcher claiming to be crosspost while asking for mass-ping settings is a wiring bug
	spy := &spyMatcher{kind: guildmodels.Crosspost}
	d := NewDispatcher(enabledCache(guildmodels.Crosspost), &fakeSource{}, nil)
	r := newMatcherRunner[*settings.MassPing](spy, d)

	_, err := r.evaluate(context.Background(), guildMessage("m", "u"))
	var internalErr *InternalError
	if !errors.As(err, &internalErr) {
		t.Fatalf("expected InternalError, got %v", err)
	}
	if spy.Calls() != 0 {
		t.Error("matcher should not run with mismatched settings")
	}
}

func TestEveryMatcherIsPairedWithItsSettings(t *testing.T) {
	kinds := guildmodels.AllModuleKinds()
	d := NewDispatcher(enabledCache(kinds...), &fakeSource{}, nil)

	started := 0
	for _, kind := range kinds {
		r, ok := d.newRunner(kind)
		if !ok {
			if kind != guildmodels.ChannelActivity && kind != guildmodels.UserActivity {
				t.Errorf("no matcher for %v", kind)
			}
			continue
		}
		started++
		if r.kind() != kind {
			t.Errorf("runner for %v reports kind %v", kind, r.kind())
		}
		_, err := r.evaluate(context.Background(), guildMessage("m", "u"))
		var internalErr *InternalError
		if errors.As(err, &internalErr) {
			t.Errorf("%v: %v", kind, err)
		}
	}
	if started != 6 {
		t.Errorf("started %d runners, want 6", started)
	}
}

func TestRunnerContinuesAfterLag(t *testing.T) {
	spy := &spyMatcher{kind: guildmodels.MassPing}
	d := NewDispatcher(enabledCache(guildmodels.MassPing), &fakeSource{}, nil)
	r := newMatcherRunner[*settings.MassPing](spy, d)

	msgs := broadcast.New[*discordgo.Message](1)
	rx := msgs.Subscribe()
	for _, id := range []string{"1", "2", "3"} {
		if _, err := msgs.Send(guildMessage(id, "u")); err != nil {
			t.Fatal(err)
		}
	}

	tx := make(chan Match, 4)
	errs := make(chan error, 1)
	go func() { errs <- r.run(context.Background(), rx, tx) }()

	select {
	case m := <-tx:
		if m.Message.ID != "3" || m.Kind != guildmodels.MassPing || m.ID == "" {
			t.Errorf("unexpected match %+v", m)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runner stopped after lagging")
	}

	msgs.Close()
	select {
	case err := <-errs:
		if !errors.Is(err, broadcast.ErrClosed) {
			t.Errorf("run() = %v, want ErrClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after close")
	}
}

func TestRunnerBlocksOnFullQueue(t *testing.T) {
	spy := &spyMatcher{kind: guildmodels.MassPing}
	d := NewDispatcher(enabledCache(guildmodels.MassPing), &fakeSource{}, nil)
	r := newMatcherRunner[*settings.MassPing](spy, d)

	msgs := broadcast.New[*discordgo.Message](8)
	rx := msgs.Subscribe()
	tx := make(chan Match)
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- r.run(ctx, rx, tx) }()

	msgs.Send(guildMessage("1", "u"))
	msgs.Send(guildMessage("2", "u"))

	//nobody is reading, the first match must still be delivered once somebody does
	time.Sleep(20 * time.Millisecond)
	for _, want := range []string{"1", "2"} {
		select {
		case m := <-tx:
			if m.Message.ID != want {
				t.Errorf("got match for %v, want %v", m.Message.ID, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("match was dropped")
		}
	}

	cancel()
	if err := <-errs; !errors.Is(err, context.Canceled) {
		t.Errorf("run() = %v, want context.Canceled", err)
	}
}

func TestDispatcherForwardsMatchesAndClosesQueue(t *testing.T) {
	d := NewDispatcher(enabledCache(guildmodels.MassPing, guildmodels.InviteLink), &fakeSource{}, nil)
	msgs := broadcast.New[*discordgo.Message](16)
	queue := d.Start(context.Background(), msgs, 8)
	if msgs.ReceiverCount() != 6 {
		t.Fatalf("%d runners subscribed, want 6", msgs.ReceiverCount())
	}

	msg := guildMessage("m", "u")
	msg.MentionEveryone = true
	msg.Content = "https://discord.gg/abc123"
	if _, err := msgs.Send(msg); err != nil {
		t.Fatal(err)
	}
	msgs.Close()

	got := make(map[guildmodels.ModuleKind]bool)
	timeout := time.After(5 * time.Second)
	for {
		select {
		case m, ok := <-queue:
			if !ok {
				if len(got) != 2 || !got[guildmodels.MassPing] || !got[guildmodels.InviteLink] {
					t.Errorf("got matches for %v", got)
				}
				return
			}
			got[m.Kind] = true
		case <-timeout:
			t.Fatal("queue was never closed")
		}
	}
}
