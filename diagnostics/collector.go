package diagnostics

import (
	"sync"

	"github.com/sarchlab/propjson/hooking"
	"github.com/sarchlab/propjson/serialization"
)

// Collector is a hook that keeps the diagnostics it sees in memory.
type Collector struct {
	mu          sync.Mutex
	diagnostics []serialization.Diagnostic
	limit       int
}

// NewCollector creates an empty Collector that keeps everything.
func NewCollector() *Collector {
	return &Collector{}
}

// NewBoundedCollector creates a Collector that only keeps the most recent
// limit diagnostics.
func NewBoundedCollector(limit int) *Collector {
	if limit <= 0 {
		panic("collector limit must be positive")
	}

	return &Collector{limit: limit}
}

// Func records the diagnostic carried by ctx, if any.
func (c *Collector) Func(ctx hooking.HookCtx) {
	if ctx.Pos != serialization.HookPosDiagnostic {
		return
	}

	d, ok := ctx.Item.(serialization.Diagnostic)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.diagnostics = append(c.diagnostics, d)

	// Trimming at twice the limit keeps appends amortized O(1).
	if c.limit > 0 && len(c.diagnostics) >= 2*c.limit {
		c.diagnostics = append(c.diagnostics[:0],
			c.diagnostics[len(c.diagnostics)-c.limit:]...)
	}
}

// kept returns the diagnostics within the limit. c.mu must be held.
func (c *Collector) kept() []serialization.Diagnostic {
	if c.limit > 0 && len(c.diagnostics) > c.limit {
		return c.diagnostics[len(c.diagnostics)-c.limit:]
	}

	return c.diagnostics
}

// Diagnostics returns a copy of everything collected so far.
func (c *Collector) Diagnostics() []serialization.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]serialization.Diagnostic(nil), c.kept()...)
}

// Count returns how many diagnostics of the given kind were collected.
func (c *Collector) Count(kind serialization.DiagnosticKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, d := range c.kept() {
		if d.Kind == kind {
			n++
		}
	}

	return n
}

// Len returns the number of diagnostics collected.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.kept())
}

// Reset forgets everything collected.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.diagnostics = nil
	c.mu.Unlock()
}
