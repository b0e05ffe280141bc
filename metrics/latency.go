//Package metrics keeps rolling latency averages for the gateway connection, matcher evaluation and action
//execution.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

//DefaultSamples is the number of samples each counter averages over
const DefaultSamples = 10

//Counter is a rolling average over the last few recorded durations. A nil *Counter ignores every sample, so
//components can be built without one in tests.
type Counter struct {
	mu      sync.RWMutex
	samples []time.Duration
	next    int
	full    bool
}

//NewCounter creates a counter averaging over the last n samples
func NewCounter(n int) *Counter {
	if n < 1 {
		n = DefaultSamples
	}
	return &Counter{samples: make([]time.Duration, n)}
}

//Record adds a sample, evicting the oldest one once the counter is full
func (c *Counter) Record(d time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples[c.next] = d
	c.next++
	if c.next == len(c.samples) {
		c.next = 0
		c.full = true
	}
}

//Average returns the mean of the recorded samples, or 0 if there are none
func (c *Counter) Average() time.Duration {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := c.next
	if c.full {
		n = len(c.samples)
	}
	if n == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range c.samples[:n] {
		total += d
	}
	return total / time.Duration(n)
}

//Latencies groups the counters shared by the bot's components
type Latencies struct {
	Gateway *Counter
	Message *Counter
	Action  *Counter
}

//NewLatencies creates a full set of counters with DefaultSamples samples each
func NewLatencies() *Latencies {
	return &Latencies{
		Gateway: NewCounter(DefaultSamples),
		Message: NewCounter(DefaultSamples),
		Action:  NewCounter(DefaultSamples),
	}
}

//RunTicker samples the gateway heartbeat latency every freq and logs the current averages until ctx is done
func (l *Latencies) RunTicker(ctx context.Context, freq time.Duration, heartbeat func() time.Duration) {
	logrus.Infof("Starting latency update loop, updating every %v", freq)
	ticker := time.NewTicker(freq)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logrus.Debug("Latency update loop stopped")
			return
		case <-ticker.C:
		}

		if latency := heartbeat(); latency > 0 {
			l.Gateway.Record(latency)
		} else {
			logrus.Warn("Missed gateway latency update")
		}
		logrus.WithFields(logrus.Fields{
			"gateway": l.Gateway.Average(),
			"message": l.Message.Average(),
			"action":  l.Action.Average(),
		}).Info("Average latencies")
	}
}
