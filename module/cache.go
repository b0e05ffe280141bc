package module

import (
	"context"
	"sync"

	"github.com/callummance/caretaker/guildmodels"
	"github.com/sirupsen/logrus"
)

//Cache holds the enabled state of every configured module, keyed by guild and module kind. It is read on every
//message by every matcher runner, so lookups never touch the database. A single Cache is shared by pointer between
//all runners and the Manager.
type Cache struct {
	mu     sync.RWMutex
	guilds map[string]map[guildmodels.ModuleKind]guildmodels.Module
}

//ModuleLister is the part of the repository needed to fill the cache at startup
type ModuleLister interface {
	AllModules(ctx context.Context) ([]guildmodels.Module, error)
}

//NewCache builds a cache from a list of stored modules. Guilds and kinds missing from modules are left out rather
//than defaulted.
func NewCache(modules []guildmodels.Module) *Cache {
	guilds := make(map[string]map[guildmodels.ModuleKind]guildmodels.Module)
	for _, m := range modules {
		kinds, ok := guilds[m.GuildID]
		if !ok {
			kinds = make(map[guildmodels.ModuleKind]guildmodels.Module)
			guilds[m.GuildID] = kinds
		}
		kinds[m.Kind] = m
	}
	return &Cache{guilds: guilds}
}

//PopulateCache loads every stored module and builds a cache from them
func PopulateCache(ctx context.Context, repo ModuleLister) (*Cache, error) {
	modules, err := repo.AllModules(ctx)
	if err != nil {
		logrus.Errorf("Failed to load modules for cache population: %v", err)
		return nil, err
	}
	cache := NewCache(modules)
	logrus.Debugf("Module cache populated. %d modules in total across %d guilds", len(modules), len(cache.guilds))
	return cache, nil
}

//Get returns the cached state of a module. Modules which were never configured are reported as disabled.
func (c *Cache) Get(gid string, kind guildmodels.ModuleKind) guildmodels.Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.guilds[gid][kind]; ok {
		return m
	}
	return guildmodels.DefaultModule(gid, kind)
}

//Update inserts or replaces the cached state of a module
func (c *Cache) Update(m guildmodels.Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds, ok := c.guilds[m.GuildID]
	if !ok {
		kinds = make(map[guildmodels.ModuleKind]guildmodels.Module)
		c.guilds[m.GuildID] = kinds
	}
	kinds[m.Kind] = m
}

//Len returns the number of cached modules across all guilds
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, kinds := range c.guilds {
		n += len(kinds)
	}
	return n
}
