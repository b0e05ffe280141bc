package matcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/broadcast"
	"github.com/callummance/caretaker/guildmodels"
	"github.com/callummance/caretaker/metrics"
	"github.com/callummance/caretaker/module"
	"github.com/callummance/caretaker/settings"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//ConfigSource is the part of the repository read by runners for every message
type ConfigSource interface {
	GetSettingRows(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.SettingRow, error)
	GetExclusions(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.Exclusion, error)
}

//runner drives a single matcher
type runner interface {
	kind() guildmodels.ModuleKind
	evaluate(ctx context.Context, msg *discordgo.Message) (bool, error)
	run(ctx context.Context, rx *broadcast.Receiver[*discordgo.Message], tx chan<- Match) error
}

type matcherRunner[S settings.Settings] struct {
	matcher Matcher[S]
	cache   *module.Cache
	source  ConfigSource
	latency *metrics.Counter
}

func newMatcherRunner[S settings.Settings](m Matcher[S], d *Dispatcher) runner {
	return &matcherRunner[S]{
		matcher: m,
		cache:   d.cache,
		source:  d.source,
		latency: d.latency,
	}
}

func (r *matcherRunner[S]) kind() guildmodels.ModuleKind {
	return r.matcher.Kind()
}

//run receives messages until the broadcast closes or ctx is done. Lagging behind the broadcast only loses the
//skipped messages. A full action queue blocks the runner rather than dropping the match.
func (r *matcherRunner[S]) run(ctx context.Context, rx *broadcast.Receiver[*discordgo.Message], tx chan<- Match) error {
	kind := r.kind()
	for {
		msg, err := rx.Recv(ctx)
		var lagged *broadcast.LaggedError
		if errors.As(err, &lagged) {
			logrus.WithField("module", kind).Warnf("Message receiver lagged, skipped %d messages", lagged.Skipped)
			continue
		} else if err != nil {
			return err
		}

		fields := logrus.Fields{
			"module":  kind,
			"guild":   msg.GuildID,
			"channel": msg.ChannelID,
			"message": msg.ID,
		}
		matched, err := r.evaluate(ctx, msg)
		var internalErr *InternalError
		if errors.As(err, &internalErr) {
			logrus.WithFields(fields).Errorf("Matching failed, this is a bug: %v", err)
			continue
		} else if err != nil {
			logrus.WithFields(fields).Warnf("Matching failed: %v", err)
			continue
		} else if !matched {
			continue
		}

		match := Match{
			ID:      uuid.NewString(),
			Kind:    kind,
			Message: msg,
			Matched: time.Now(),
		}
		fields["match_id"] = match.ID
		if msg.Author != nil {
			fields["author"] = msg.Author.ID
		}
		logrus.WithFields(fields).Debug("Matched message")

		select {
		case tx <- match:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

//evaluate gates msg on the module being enabled and the author not being excluded, then runs the matcher with
//freshly loaded settings
func (r *matcherRunner[S]) evaluate(ctx context.Context, msg *discordgo.Message) (bool, error) {
	kind := r.kind()
	if msg.GuildID == "" {
		return false, nil
	}
	if !r.cache.Get(msg.GuildID, kind).Enabled {
		return false, nil
	}

	excls, err := r.source.GetExclusions(ctx, msg.GuildID, kind)
	if err != nil {
		return false, fmt.Errorf("failed to load exclusions: %w", err)
	}
	if module.Exclusions(excls).ShouldExclude(msg.Author, msg.Member) {
		return false, nil
	}

	s, err := r.loadSettings(ctx, msg.GuildID)
	if err != nil {
		return false, err
	}

	start := time.Now()
	matched, err := r.matcher.IsMatch(s, msg)
	r.latency.Record(time.Since(start))
	logrus.Debugf("%v: returned match result %v in %v", kind, matched, time.Since(start))
	return matched, err
}

func (r *matcherRunner[S]) loadSettings(ctx context.Context, gid string) (S, error) {
	var zero S
	kind := r.kind()
	rows, err := r.source.GetSettingRows(ctx, gid, kind)
	if err != nil {
		return zero, fmt.Errorf("failed to load settings: %w", err)
	}
	generic, err := settings.FromRows(kind, rows)
	if err != nil {
		return zero, fmt.Errorf("failed to parse stored settings: %w", err)
	}
	s, ok := generic.(S)
	if !ok || generic.Kind() != kind {
		return zero, &InternalError{Kind: kind, Reason: fmt.Sprintf("got settings of type %T", generic)}
	}
	return s, nil
}
