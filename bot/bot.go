//Package bot wires the moderation engine together: persistence, the module cache, the matcher runners, the action
//pipeline and the Discord connection.
package bot

import (
	"context"
	"net/url"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/action"
	"github.com/callummance/caretaker/broadcast"
	"github.com/callummance/caretaker/config"
	"github.com/callummance/caretaker/db"
	"github.com/callummance/caretaker/discord"
	"github.com/callummance/caretaker/matcher"
	"github.com/callummance/caretaker/metrics"
	"github.com/callummance/caretaker/module"
	"github.com/callummance/caretaker/sqlstore"
	"github.com/sirupsen/logrus"
)

//drainTimeout bounds how long Close waits for running actions
const drainTimeout = 30 * time.Second

//Deps holds the handles shared between the bot's components. Each component is given the ones it needs when it is
//built.
type Deps struct {
	Repo     module.Repository
	Cache    *module.Cache
	Manager  *module.Manager
	Latency  *metrics.Latencies
	Messages *broadcast.Sender[*discordgo.Message]
	Limiter  *action.Limiter
}

//Caretaker represents an instance of the discord bot, containing handles to the various external connections.
type Caretaker struct {
	cfg               *config.Config
	deps              Deps
	DiscordConnection *discord.EventSource

	dispatcher   *matcher.Dispatcher
	pipeline     *action.Pipeline
	pipelineDone chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
}

//Init connects to the database and Discord and starts processing messages
func Init(cfg *config.Config) (*Caretaker, error) {
	ctx := context.Background()
	//Start database connection
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing database connection: %v", err)
		return nil, err
	}
	cache, err := module.PopulateCache(ctx, repo)
	if err != nil {
		logrus.Errorf("Cannot start bot due to error loading modules: %v", err)
		repo.Close()
		return nil, err
	}
	res := newCaretaker(cfg, repo, cache)

	//Start discord connection
	disc, err := discord.StartDiscordListener(cfg.DiscordToken, res)
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing discord connection: %v", err)
		res.cancel()
		repo.Close()
		return nil, err
	}
	res.DiscordConnection = disc

	res.start(disc)
	go res.deps.Latency.RunTicker(res.ctx, cfg.LatencyUpdateFreq, disc.HeartbeatLatency)
	return res, nil
}

func openRepository(ctx context.Context, cfg *config.Config) (module.Repository, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}
	if backend == config.RethinkDB {
		conn, err := db.Init(cfg.DatabaseURL, cfg.DBPoolInitial, cfg.DBPoolMax)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	store, err := sqlstore.Open(ctx, cfg.DatabaseURL, sqlstore.WithPoolSize(cfg.DBPoolInitial, cfg.DBPoolMax))
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newCaretaker(cfg *config.Config, repo module.Repository, cache *module.Cache) *Caretaker {
	ctx, cancel := context.WithCancel(context.Background())
	latency := metrics.NewLatencies()
	deps := Deps{
		Repo:     repo,
		Cache:    cache,
		Manager:  module.NewManager(repo, cache),
		Latency:  latency,
		Messages: broadcast.New[*discordgo.Message](cfg.BroadcastCapacity),
		Limiter:  action.NewLimiter(cfg.NotifyRate, cfg.NotifyBurst),
	}
	return &Caretaker{
		cfg:          cfg,
		deps:         deps,
		dispatcher:   matcher.NewDispatcher(cache, repo, latency.Message),
		pipelineDone: make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

//start launches the matcher runners and the action pipeline acting through platform
func (b *Caretaker) start(platform action.Platform) {
	queue := b.dispatcher.Start(b.ctx, b.deps.Messages, b.cfg.ActionQueueCapacity)
	b.pipeline = action.NewPipeline(b.deps.Repo, b.deps.Cache, platform, b.deps.Limiter, b.deps.Latency.Action)
	go func() {
		defer close(b.pipelineDone)
		//actions already queued are allowed to finish, so the pipeline does not share the runners' context
		b.pipeline.Run(context.Background(), queue)
	}()
}

//Manager returns the handle used to change module configuration
func (b *Caretaker) Manager() *module.Manager {
	return b.deps.Manager
}

//BotAddURL generates a URL that can be used to add the bot to a server
func (b *Caretaker) BotAddURL() (*url.URL, error) {
	return b.DiscordConnection.BotAddURL()
}

//Close cleanly terminates the bot instance. New messages stop first, then every runner finishes the messages it
//already has and running actions are given drainTimeout to complete before the database is closed.
func (b *Caretaker) Close() {
	logrus.Info("Terminating bot...")
	if b.DiscordConnection != nil {
		b.DiscordConnection.Close()
	}
	b.deps.Messages.Close()
	if b.pipeline != nil {
		select {
		case <-b.pipelineDone:
		case <-time.After(drainTimeout):
			logrus.Warnf("Gave up waiting for running actions after %v", drainTimeout)
		}
	}
	b.cancel()
	if err := b.deps.Repo.Close(); err != nil {
		logrus.Warnf("Failed to close database connection: %v", err)
	}
}
