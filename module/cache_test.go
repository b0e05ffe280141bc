package module

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/callummance/caretaker/guildmodels"
)

type fakeLister struct {
	modules []guildmodels.Module
	err     error
}

func (l fakeLister) AllModules(context.Context) ([]guildmodels.Module, error) {
	return l.modules, l.err
}

func TestCacheDefaultsToDisabled(t *testing.T) {
	c := NewCache(nil)
	for _, kind := range guildmodels.AllModuleKinds() {
		m := c.Get("unknown-guild", kind)
		if m.Enabled || m.GuildID != "unknown-guild" || m.Kind != kind {
			t.Errorf("Get(%v) = %+v, want disabled default", kind, m)
		}
	}
}

func TestPopulateCache(t *testing.T) {
	lister := fakeLister{modules: []guildmodels.Module{
		{GuildID: "g1", Kind: guildmodels.Crosspost, Enabled: true},
		{GuildID: "g1", Kind: guildmodels.MassPing, Enabled: false},
		{GuildID: "g2", Kind: guildmodels.Crosspost, Enabled: true},
	}}
	c, err := PopulateCache(context.Background(), lister)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if !c.Get("g1", guildmodels.Crosspost).Enabled || !c.Get("g2", guildmodels.Crosspost).Enabled {
		t.Error("expected crosspost to be enabled in both guilds")
	}
	if c.Get("g2", guildmodels.MassPing).Enabled {
		t.Error("expected unconfigured mass-ping to be disabled")
	}

	if _, err := PopulateCache(context.Background(), fakeLister{err: errors.New("down")}); err == nil {
		t.Error("expected population error to be returned")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		gid := fmt.Sprintf("g%d", i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Update(guildmodels.Module{GuildID: gid, Kind: guildmodels.Selfbot, Enabled: j%2 == 0})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get(gid, guildmodels.Selfbot)
			}
		}()
	}
	wg.Wait()
	if c.Len() != 8 {
		t.Errorf("Len() = %d, want 8", c.Len())
	}
	//the last write for every guild was j=99
	if c.Get("g3", guildmodels.Selfbot).Enabled {
		t.Error("expected last write to win")
	}
}
