package matcher

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/broadcast"
	"github.com/callummance/caretaker/guildmodels"
	"github.com/callummance/caretaker/metrics"
	"github.com/callummance/caretaker/module"
	"github.com/callummance/caretaker/settings"
	"github.com/sirupsen/logrus"
)

//Dispatcher starts one runner per module kind which has a matcher
type Dispatcher struct {
	cache   *module.Cache
	source  ConfigSource
	latency *metrics.Counter
	wg      sync.WaitGroup
}

//NewDispatcher creates a dispatcher whose runners gate on cache and load settings and exclusions from source.
//latency may be nil.
func NewDispatcher(cache *module.Cache, source ConfigSource, latency *metrics.Counter) *Dispatcher {
	return &Dispatcher{
		cache:   cache,
		source:  source,
		latency: latency,
	}
}

//newRunner builds the runner for kind. Kinds without a matcher report false.
func (d *Dispatcher) newRunner(kind guildmodels.ModuleKind) (runner, bool) {
	switch kind {
	case guildmodels.MassPing:
		return newMatcherRunner[*settings.MassPing](MassPing{}, d), true
	case guildmodels.Crosspost:
		return newMatcherRunner[*settings.Crosspost](NewCrosspost(), d), true
	case guildmodels.EmojiSpam:
		return newMatcherRunner[*settings.EmojiSpam](EmojiSpam{}, d), true
	case guildmodels.MentionSpam:
		return newMatcherRunner[*settings.MentionSpam](MentionSpam{}, d), true
	case guildmodels.Selfbot:
		return newMatcherRunner[*settings.Selfbot](Selfbot{}, d), true
	case guildmodels.InviteLink:
		return newMatcherRunner[*settings.InviteLink](InviteLink{}, d), true
	case guildmodels.ChannelActivity, guildmodels.UserActivity:
		return nil, false
	default:
		logrus.Errorf("Unknown module kind %v, this is a bug", kind)
		return nil, false
	}
}

//Start subscribes a runner for every matcher to msgs and returns the queue their matches are sent to. The queue
//holds up to capacity matches and is closed once every runner has stopped.
func (d *Dispatcher) Start(ctx context.Context, msgs *broadcast.Sender[*discordgo.Message], capacity int) <-chan Match {
	queue := make(chan Match, capacity)
	for _, kind := range guildmodels.AllModuleKinds() {
		r, ok := d.newRunner(kind)
		if !ok {
			logrus.Debugf("Module %v has no matcher, not starting a runner", kind)
			continue
		}
		rx := msgs.Subscribe()
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			defer rx.Close()
			logrus.Debugf("%v: runner started", r.kind())
			err := r.run(ctx, rx, queue)
			switch {
			case errors.Is(err, broadcast.ErrClosed), errors.Is(err, context.Canceled):
				logrus.Debugf("%v: runner returned successfully", r.kind())
			default:
				logrus.Errorf("%v: runner returned with error: %v", r.kind(), err)
			}
		}()
	}

	go func() {
		d.wg.Wait()
		close(queue)
	}()
	return queue
}

//Wait blocks until every runner has stopped
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
