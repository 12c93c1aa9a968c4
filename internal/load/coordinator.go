// Package load fans a normalized table out to every configured sink.
package load

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/fashion-etl/internal/product"
)

// Sink is a destination for the normalized table. Write reports success; it
// logs its own failures.
type Sink interface {
	Name() string
	Write(ctx context.Context, table product.Table) bool
}

// Recorder receives per-sink outcomes.
type Recorder interface {
	ObserveSink(sink string, ok bool)
}

// Outcome is the result of one sink write.
type Outcome struct {
	Sink string
	OK   bool
}

// Coordinator invokes each sink once, in registration order.
type Coordinator struct {
	sinks   []Sink
	metrics Recorder
	logger  *zap.Logger
}

// NewCoordinator constructs a Coordinator over sinks. metrics may be nil.
func NewCoordinator(sinks []Sink, metrics Recorder, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{sinks: sinks, metrics: metrics, logger: logger}
}

// Load writes table to every sink and reports whether all succeeded.
func (c *Coordinator) Load(ctx context.Context, table product.Table) bool {
	ok, _ := c.LoadAll(ctx, table)
	return ok
}

// LoadAll writes table to every sink, even after a failure, and returns the
// conjunction of their results along with each outcome. An empty table reaches
// no sink.
func (c *Coordinator) LoadAll(ctx context.Context, table product.Table) (bool, []Outcome) {
	if table.Empty() {
		c.logger.Warn("No data to load")
		return false, nil
	}

	all := true
	outcomes := make([]Outcome, 0, len(c.sinks))
	for _, s := range c.sinks {
		ok := c.write(ctx, s, table)
		if c.metrics != nil {
			c.metrics.ObserveSink(s.Name(), ok)
		}
		outcomes = append(outcomes, Outcome{Sink: s.Name(), OK: ok})
		all = all && ok
	}
	return all, outcomes
}

func (c *Coordinator) write(ctx context.Context, s Sink, table product.Table) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Sink panicked",
				zap.String("sink", s.Name()),
				zap.Error(fmt.Errorf("panic: %v", r)),
			)
			ok = false
		}
	}()
	return s.Write(ctx, table)
}
