// Package playlist holds the ordered list of playable entries, its cursor
// and the enqueue list.
//
// A Playlist is not safe for concurrent use on its own: callers bracket
// every access with Lock and Unlock.
package playlist

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/llehouerou/waved/internal/lockorder"
)

// Entry is a single playable item.
type Entry struct {
	Path     string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// Name returns a display name for the entry.
func (e Entry) Name() string {
	switch {
	case e.Artist != "" && e.Title != "":
		return e.Artist + " - " + e.Title
	case e.Title != "":
		return e.Title
	}
	return e.Path
}

// Playlist is an ordered collection of entries with a current-position
// cursor.
type Playlist struct {
	mu lockorder.Mutex

	entries []Entry
	current int // -1 if nothing from the playlist is current
	resume  int // index Next starts from while current is -1

	queue []int // enqueued entry indexes, played before the normal advance

	// random modes
	order   []int // indexes not yet played in this cycle
	history []int // indexes played in this cycle, most recent last
	rng     *rand.Rand
}

// New creates an empty playlist.
func New() *Playlist {
	return &Playlist{
		mu:      lockorder.Mutex{Name: "playlist"},
		current: -1,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewWithSeed creates an empty playlist with a deterministic shuffle.
func NewWithSeed(seed uint64) *Playlist {
	p := New()
	p.rng = rand.New(rand.NewPCG(seed, seed))
	return p
}

func (p *Playlist) Lock()   { p.mu.Lock() }
func (p *Playlist) Unlock() { p.mu.Unlock() }

// Len returns the number of entries.
func (p *Playlist) Len() int { return len(p.entries) }

// Entry returns the entry at index.
func (p *Playlist) Entry(index int) (Entry, bool) {
	if index < 0 || index >= len(p.entries) {
		return Entry{}, false
	}
	return p.entries[index], true
}

// Entries returns a copy of all entries.
func (p *Playlist) Entries() []Entry {
	return slices.Clone(p.entries)
}

// Add appends entries and returns the index of the first one.
func (p *Playlist) Add(entries ...Entry) int {
	pos := len(p.entries)
	p.entries = append(p.entries, entries...)
	p.resetRandom()
	return pos
}

// Insert places entries before index and returns the insert position.
// An index past the end appends.
func (p *Playlist) Insert(index int, entries ...Entry) int {
	if index < 0 {
		index = 0
	}
	if index >= len(p.entries) {
		return p.Add(entries...)
	}
	p.entries = slices.Insert(p.entries, index, entries...)
	n := len(entries)
	if p.current >= index {
		p.current += n
	}
	if p.current < 0 && p.resume > index {
		p.resume += n
	}
	for i, q := range p.queue {
		if q >= index {
			p.queue[i] = q + n
		}
	}
	p.resetRandom()
	return index
}

// Remove deletes the entry at index. Removing the current entry clears the
// cursor; the next advance resumes with the entry that followed it.
func (p *Playlist) Remove(index int) bool {
	if index < 0 || index >= len(p.entries) {
		return false
	}
	p.entries = slices.Delete(p.entries, index, index+1)

	switch {
	case p.current == index:
		p.current = -1
		p.resume = index
	case p.current > index:
		p.current--
	case p.current < 0 && p.resume > index:
		p.resume--
	}

	queue := p.queue[:0]
	for _, q := range p.queue {
		switch {
		case q == index:
			continue
		case q > index:
			q--
		}
		queue = append(queue, q)
	}
	p.queue = queue
	p.resetRandom()
	return true
}

// Clear removes all entries, the cursor and the queue.
func (p *Playlist) Clear() {
	p.entries = nil
	p.current = -1
	p.resume = 0
	p.queue = nil
	p.resetRandom()
}

// Current returns the current index, or -1.
func (p *Playlist) Current() int { return p.current }

// CurrentEntry returns the current entry, if any.
func (p *Playlist) CurrentEntry() (Entry, bool) {
	return p.Entry(p.current)
}

// SetCurrent moves the cursor to index.
func (p *Playlist) SetCurrent(index int) bool {
	if index < 0 || index >= len(p.entries) {
		return false
	}
	p.current = index
	p.markPlayed(index)
	return true
}

// ClearCurrent detaches the cursor, for example while a file outside the
// playlist is playing. Contents are left untouched.
func (p *Playlist) ClearCurrent() {
	if p.current >= 0 {
		p.resume = p.current + 1
	}
	p.current = -1
}

// Next advances the cursor for a user request and returns the new index.
// Enqueued entries come first. ok is false at the end of a non-wrapping
// playlist; the cursor is left unchanged then.
func (p *Playlist) Next(mode PlayMode) (int, bool) {
	return p.advance(mode, false)
}

// AutoNext advances the cursor after a track finished. It differs from Next
// only in repeat-one mode, where it stays on the current entry.
func (p *Playlist) AutoNext(mode PlayMode) (int, bool) {
	return p.advance(mode, true)
}

func (p *Playlist) advance(mode PlayMode, auto bool) (int, bool) {
	if len(p.entries) == 0 {
		return -1, false
	}
	if len(p.queue) > 0 {
		next := p.queue[0]
		p.queue = p.queue[1:]
		p.SetCurrent(next)
		return next, true
	}
	if auto && mode == RepeatOne && p.current >= 0 {
		return p.current, true
	}
	if mode.random() {
		return p.nextRandom(mode)
	}

	next := p.current + 1
	if p.current < 0 {
		next = p.resume
	}
	if next >= len(p.entries) {
		if !mode.wraps() {
			return -1, false
		}
		next = 0
	}
	p.SetCurrent(next)
	return next, true
}

func (p *Playlist) nextRandom(mode PlayMode) (int, bool) {
	if p.order == nil {
		p.shuffle()
	}
	if len(p.order) == 0 {
		if !mode.wraps() {
			return -1, false
		}
		p.history = nil
		p.shuffle()
		// avoid playing the same entry twice in a row across cycles
		if len(p.order) > 1 && p.order[0] == p.current {
			last := len(p.order) - 1
			p.order[0], p.order[last] = p.order[last], p.order[0]
		}
	}
	next := p.order[0]
	p.current = next
	p.order = p.order[1:]
	p.history = append(p.history, next)
	return next, true
}

// Prev moves the cursor back. In random modes it walks back through the
// entries played in this cycle.
func (p *Playlist) Prev(mode PlayMode) (int, bool) {
	if len(p.entries) == 0 {
		return -1, false
	}
	if mode.random() {
		if len(p.history) < 2 {
			return -1, false
		}
		last := p.history[len(p.history)-1]
		p.history = p.history[:len(p.history)-1]
		p.order = append([]int{last}, p.order...)
		p.current = p.history[len(p.history)-1]
		return p.current, true
	}

	prev := p.current - 1
	if p.current < 0 {
		prev = p.resume - 1
	}
	if prev < 0 {
		if !mode.wraps() {
			return -1, false
		}
		prev = len(p.entries) - 1
	}
	p.SetCurrent(prev)
	return prev, true
}

// Enqueue appends index to the queue. An entry may be queued once.
func (p *Playlist) Enqueue(index int) bool {
	if index < 0 || index >= len(p.entries) || slices.Contains(p.queue, index) {
		return false
	}
	p.queue = append(p.queue, index)
	return true
}

// Dequeue removes index from the queue.
func (p *Playlist) Dequeue(index int) bool {
	i := slices.Index(p.queue, index)
	if i < 0 {
		return false
	}
	p.queue = slices.Delete(p.queue, i, i+1)
	return true
}

// ToggleQueue enqueues index, or dequeues it if already queued. It reports
// whether the entry is queued afterwards.
func (p *Playlist) ToggleQueue(index int) bool {
	if p.Dequeue(index) {
		return false
	}
	return p.Enqueue(index)
}

// QueueLen returns the number of enqueued entries.
func (p *Playlist) QueueLen() int { return len(p.queue) }

// QueuePosition returns the 1-based queue position of index, or 0.
func (p *Playlist) QueuePosition(index int) int {
	return slices.Index(p.queue, index) + 1
}

// ClearQueue empties the queue.
func (p *Playlist) ClearQueue() { p.queue = nil }

// ResetShuffle starts a new random cycle from the current entry.
func (p *Playlist) ResetShuffle() { p.resetRandom() }

func (p *Playlist) resetRandom() {
	p.order = nil
	p.history = nil
	if p.current >= 0 {
		p.history = []int{p.current}
	}
}

// shuffle fills order with the entries not yet played in this cycle.
func (p *Playlist) shuffle() {
	order := make([]int, 0, len(p.entries))
	for i := range p.entries {
		if !slices.Contains(p.history, i) {
			order = append(order, i)
		}
	}
	p.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	p.order = order
}

func (p *Playlist) markPlayed(index int) {
	if p.order != nil {
		if i := slices.Index(p.order, index); i >= 0 {
			p.order = slices.Delete(p.order, i, i+1)
		}
	}
	if i := slices.Index(p.history, index); i >= 0 {
		p.history = slices.Delete(p.history, i, i+1)
	}
	p.history = append(p.history, index)
}
