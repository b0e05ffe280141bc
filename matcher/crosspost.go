package matcher

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/callummance/caretaker/guildmodels"
	"github.com/callummance/caretaker/nilsimsa"
	"github.com/callummance/caretaker/settings"
	"github.com/sirupsen/logrus"
)

//historySize is the number of recent messages remembered per author per guild
const historySize = 3

//Crosspost matches a message when the same author posted a near-identical message in a different channel of the
//same guild shortly before. Similarity is measured by comparing Nilsimsa digests.
type Crosspost struct {
	history map[historyKey]*history
	now     func() time.Time
}

type historyKey struct {
	guild string
	user  string
}

type historyEntry struct {
	digest    nilsimsa.Digest
	channel   string
	timestamp time.Time
}

//history is a ring buffer of the last historySize messages. Entries only leave by being overwritten; the timeout
//is applied when comparing.
type history struct {
	entries [historySize]historyEntry
	len     int
	next    int
}

//NewCrosspost creates a crosspost matcher with empty history
func NewCrosspost() *Crosspost {
	return &Crosspost{
		history: make(map[historyKey]*history),
		now:     time.Now,
	}
}

func (*Crosspost) Kind() guildmodels.ModuleKind { return guildmodels.Crosspost }

//IsMatch compares msg against the author's remembered messages from other channels that are younger than the
//timeout. Messages shorter than minimum_length bytes are neither compared nor remembered. A matching message is not
//remembered either, so a third copy is compared against the same history as the second.
func (c *Crosspost) IsMatch(s *settings.Crosspost, msg *discordgo.Message) (bool, error) {
	if uint(len(msg.Content)) < s.MinimumLength {
		logrus.Debugf("Not matching a message of length %d", len(msg.Content))
		return false, nil
	}
	if msg.Author == nil {
		return false, &InternalError{Kind: guildmodels.Crosspost, Reason: "message has no author"}
	}

	now := c.now()
	entry := historyEntry{
		digest:    nilsimsa.Sum(msg.Content),
		channel:   msg.ChannelID,
		timestamp: msg.Timestamp,
	}
	if entry.timestamp.IsZero() {
		entry.timestamp = now
	}

	key := historyKey{guild: msg.GuildID, user: msg.Author.ID}
	h, ok := c.history[key]
	if !ok {
		h = &history{}
		c.history[key] = h
	} else if h.matches(entry, now, s) {
		return true, nil
	}
	h.push(entry)
	return false, nil
}

func (h *history) push(e historyEntry) {
	h.entries[h.next] = e
	h.next = (h.next + 1) % historySize
	if h.len < historySize {
		h.len++
	}
}

//matches walks the ring newest first
func (h *history) matches(e historyEntry, now time.Time, s *settings.Crosspost) bool {
	timeout := time.Duration(s.Timeout) * time.Second
	for i := 1; i <= h.len; i++ {
		prev := h.entries[(h.next-i+historySize)%historySize]
		if prev.channel == e.channel || now.Sub(prev.timestamp) >= timeout {
			continue
		}
		score := nilsimsa.Compare(e.digest, prev.digest)
		logrus.Debugf("%v : %v -> %d", e.digest, prev.digest, score)
		if score >= int(s.Threshold) {
			return true
		}
	}
	return false
}
