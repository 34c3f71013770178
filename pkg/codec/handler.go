package codec

import "sync"

// ErrorHandler receives diagnostics by severity. Warnings and errors never
// stop record production; fatal diagnostics are reported before the
// operation that raised them returns.
type ErrorHandler interface {
	Warning(d *Diagnostic)
	Error(d *Diagnostic)
	Fatal(d *Diagnostic)
}

// Report routes d to the handler method matching its severity. A nil
// handler drops it.
func Report(h ErrorHandler, d *Diagnostic) {
	if h == nil || d == nil {
		return
	}
	switch d.Severity {
	case SeverityWarning:
		h.Warning(d)
	case SeverityError:
		h.Error(d)
	default:
		h.Fatal(d)
	}
}

// Collector keeps every diagnostic it receives. It is safe for concurrent
// use so one collector can serve several readers.
type Collector struct {
	mu          sync.Mutex
	diagnostics []*Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Warning(d *Diagnostic) { c.add(d) }
func (c *Collector) Error(d *Diagnostic)   { c.add(d) }
func (c *Collector) Fatal(d *Diagnostic)   { c.add(d) }

func (c *Collector) add(d *Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
}

// All returns a copy of everything collected, in arrival order.
func (c *Collector) All() []*Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// BySeverity returns the collected diagnostics of one severity.
func (c *Collector) BySeverity(sev Severity) []*Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Diagnostic
	for _, d := range c.diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Warnings is shorthand for BySeverity(SeverityWarning).
func (c *Collector) Warnings() []*Diagnostic { return c.BySeverity(SeverityWarning) }

// Errors is shorthand for BySeverity(SeverityError).
func (c *Collector) Errors() []*Diagnostic { return c.BySeverity(SeverityError) }

// Fatals is shorthand for BySeverity(SeverityFatal).
func (c *Collector) Fatals() []*Diagnostic { return c.BySeverity(SeverityFatal) }

// Codes returns the codes of everything collected, in order.
func (c *Collector) Codes() []Code {
	all := c.All()
	codes := make([]Code, len(all))
	for i, d := range all {
		codes[i] = d.Code
	}
	return codes
}

// Reset drops everything collected so far.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = nil
}

type multiHandler []ErrorHandler

// MultiHandler fans each diagnostic out to every non-nil handler.
func MultiHandler(handlers ...ErrorHandler) ErrorHandler {
	var hs multiHandler
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return hs
}

func (m multiHandler) Warning(d *Diagnostic) {
	for _, h := range m {
		h.Warning(d)
	}
}

func (m multiHandler) Error(d *Diagnostic) {
	for _, h := range m {
		h.Error(d)
	}
}

func (m multiHandler) Fatal(d *Diagnostic) {
	for _, h := range m {
		h.Fatal(d)
	}
}

type discard struct{}

func (discard) Warning(*Diagnostic) {}
func (discard) Error(*Diagnostic)   {}
func (discard) Fatal(*Diagnostic)   {}

// Discard drops every diagnostic.
var Discard ErrorHandler = discard{}
