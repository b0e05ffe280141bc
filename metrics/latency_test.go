package metrics

import (
	"context"
	"testing"
	"time"
)

func TestCounterAverage(t *testing.T) {
	c := NewCounter(3)
	if c.Average() != 0 {
		t.Fatalf("empty counter average = %v, want 0", c.Average())
	}
	c.Record(10 * time.Millisecond)
	c.Record(20 * time.Millisecond)
	if got := c.Average(); got != 15*time.Millisecond {
		t.Errorf("Average() = %v, want 15ms", got)
	}
	//the 10ms sample is evicted
	c.Record(30 * time.Millisecond)
	c.Record(40 * time.Millisecond)
	if got := c.Average(); got != 30*time.Millisecond {
		t.Errorf("Average() = %v, want 30ms", got)
	}
}

func TestNilCounter(t *testing.T) {
	var c *Counter
	c.Record(time.Second)
	if c.Average() != 0 {
		t.Error("nil counter should report 0")
	}
}

func TestRunTickerRecordsGateway(t *testing.T) {
	l := NewLatencies()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sampled := make(chan struct{}, 1)
	go func() {
		l.RunTicker(ctx, time.Millisecond, func() time.Duration {
			select {
			case sampled <- struct{}{}:
			default:
			}
			return 42 * time.Millisecond
		})
		close(done)
	}()

	select {
	case <-sampled:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker never sampled the gateway")
	}
	cancel()
	<-done
	if got := l.Gateway.Average(); got != 42*time.Millisecond {
		t.Errorf("gateway average = %v, want 42ms", got)
	}
}
