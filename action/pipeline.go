package action

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/callummance/caretaker/guildmodels"
	"github.com/callummance/caretaker/matcher"
	"github.com/callummance/caretaker/metrics"
	"github.com/callummance/caretaker/module"
	"github.com/sirupsen/logrus"
)

//ActionSource is the part of the repository the pipeline loads actions from
type ActionSource interface {
	GetActions(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.Action, error)
}

//Pipeline consumes matches and runs every action configured for the matching module, each on its own goroutine
type Pipeline struct {
	source   ActionSource
	cache    *module.Cache
	platform Platform
	limiter  *Limiter
	latency  *metrics.Counter
	inFlight sync.WaitGroup
}

//NewPipeline creates a pipeline. limiter and latency may be nil.
func NewPipeline(source ActionSource, cache *module.Cache, platform Platform, limiter *Limiter, latency *metrics.Counter) *Pipeline {
	return &Pipeline{
		source:   source,
		cache:    cache,
		platform: platform,
		limiter:  limiter,
		latency:  latency,
	}
}

//Run handles matches from queue in order until it is closed, then waits for every action still running. Actions
//started for one match run concurrently with each other and with later matches.
func (p *Pipeline) Run(ctx context.Context, queue <-chan matcher.Match) {
	logrus.Info("Starting action pipeline")
	for m := range queue {
		p.handle(ctx, m)
	}
	logrus.Info("Match queue closed, waiting for running actions")
	p.inFlight.Wait()
	logrus.Info("Action pipeline stopped")
}

func (p *Pipeline) handle(ctx context.Context, m matcher.Match) {
	msg := m.Message
	fields := logrus.Fields{
		"module":   m.Kind,
		"match_id": m.ID,
	}
	if msg == nil || msg.GuildID == "" {
		logrus.WithFields(fields).Error("Matched message has no guild, dropping it. This is a bug")
		return
	}
	fields["guild"] = msg.GuildID
	fields["channel"] = msg.ChannelID
	fields["message"] = msg.ID
	log := logrus.WithFields(fields)

	mod := p.cache.Get(msg.GuildID, m.Kind)
	actions, err := p.source.GetActions(ctx, msg.GuildID, m.Kind)
	if err != nil {
		log.Warnf("Failed to load actions: %v", err)
		return
	}
	log.Infof("Running %d actions (module enabled=%v)", len(actions), mod.Enabled)

	for _, a := range actions {
		a := a
		p.inFlight.Add(1)
		go func() {
			defer p.inFlight.Done()
			p.execute(ctx, a, m, log)
		}()
	}
}

func (p *Pipeline) execute(ctx context.Context, a guildmodels.Action, m matcher.Match, log *logrus.Entry) {
	log = log.WithField("action", a.Kind)
	start := time.Now()
	err := Execute(ctx, p.platform, p.limiter, a, m.Message)
	elapsed := time.Since(start)
	p.latency.Record(elapsed)

	var tmplErr *TemplateError
	switch {
	case errors.As(err, &tmplErr):
		log.Warnf("Notify action is misconfigured: %v", err)
	case err != nil:
		log.Errorf("Failed to run action: %v", err)
	default:
		log.Debugf("Running action took %v", elapsed)
	}
}
