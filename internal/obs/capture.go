package obs

import "sync"

// Event is a recorded emission.
type Event struct {
	Name  string
	Attrs map[string]any
}

// Capture records emitted events so tests can assert on them.
// Safe for concurrent use.
type Capture struct {
	mu     sync.Mutex
	events []Event
}

func (c *Capture) Emit(name string, attrs map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, Event{Name: name, Attrs: attrs})
}

// Named returns every recorded event with the given name.
func (c *Capture) Named(name string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, ev := range c.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// Count returns how many events with the given name were emitted.
func (c *Capture) Count(name string) int {
	return len(c.Named(name))
}
