package domtest

import (
	"sync"

	"github.com/roach88/isomorph/internal/dom"
)

// Entry is one session history entry.
type Entry struct {
	Title string
	URL   string
}

// History is a headless dom.History. PushState also moves the window.
type History struct {
	mu      sync.Mutex
	window  *Window
	entries []Entry
	index   int
}

var _ dom.History = (*History)(nil)

// PushState implements dom.History. Entries after the current one are
// dropped, as in a browser.
func (h *History) PushState(title, url string) {
	h.mu.Lock()
	abs := resolve(h.entries[h.index].URL, url)
	h.entries = append(h.entries[:h.index+1], Entry{Title: title, URL: abs})
	h.index = len(h.entries) - 1
	h.mu.Unlock()

	h.window.mu.Lock()
	h.window.location = abs
	h.window.mu.Unlock()
}

// Entries returns a copy of the history stack.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), h.entries...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) back() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return Entry{}, false
	}
	h.index--
	return h.entries[h.index], true
}
