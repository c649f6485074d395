// Package gallery tracks the selected record in the coverflow carousel.
package gallery

import (
	"sync"

	"github.com/ayusman/crate/internal/gesture"
)

// State is a snapshot of the carousel position.
type State struct {
	Selected int `json:"selected"`
	Total    int `json:"total"`
}

// Carousel holds the selected index and implements gesture.Sink.
// Moves past either end are ignored.
type Carousel struct {
	mu          sync.RWMutex
	state       State
	subscribers map[chan State]struct{}
}

// NewCarousel creates a Carousel with total records, selection at the first one.
func NewCarousel(total int) *Carousel {
	if total < 0 {
		total = 0
	}
	return &Carousel{
		state:       State{Total: total},
		subscribers: make(map[chan State]struct{}),
	}
}

// State returns the current position.
func (c *Carousel) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Navigate applies a navigation command.
func (c *Carousel) Navigate(cmd gesture.Command) {
	switch cmd {
	case gesture.Advance:
		c.update(func(s *State) {
			if s.Selected < s.Total-1 {
				s.Selected++
			}
		})
	case gesture.Retreat:
		c.update(func(s *State) {
			if s.Selected > 0 {
				s.Selected--
			}
		})
	}
}

// SetTotal updates the record count, pulling the selection back inside it.
func (c *Carousel) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	c.update(func(s *State) {
		s.Total = n
		if n > 0 && s.Selected >= n {
			s.Selected = n - 1
		}
	})
}

// Select jumps to index i. Out-of-range indexes are ignored.
func (c *Carousel) Select(i int) bool {
	ok := false
	c.update(func(s *State) {
		if i >= 0 && i < s.Total {
			s.Selected = i
			ok = true
		}
	})
	return ok
}

// Subscribe returns a channel receiving the latest state after each change,
// starting with the current one. A slow reader only sees the newest state.
func (c *Carousel) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	ch <- c.state
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, ch)
			c.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (c *Carousel) update(fn func(s *State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.state
	fn(&c.state)
	if c.state == before {
		return
	}

	for ch := range c.subscribers {
		// Replace any unread state with the newer one.
		select {
		case <-ch:
		default:
		}
		ch <- c.state
	}
}
