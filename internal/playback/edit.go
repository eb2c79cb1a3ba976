package playback

import (
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/playlist"
)

// AddEntries appends entries to the playlist and returns the insert
// position.
func (c *Controller) AddEntries(entries ...playlist.Entry) int {
	if len(entries) == 0 {
		return -1
	}
	c.pl.Lock()
	pos := c.pl.Add(entries...)
	c.pl.Unlock()
	c.push(events.PlaylistChange, pos)
	return pos
}

// InsertEntries inserts entries before index.
func (c *Controller) InsertEntries(index int, entries ...playlist.Entry) int {
	if len(entries) == 0 {
		return -1
	}
	c.pl.Lock()
	pos := c.pl.Insert(index, entries...)
	c.syncPositionLocked()
	c.pl.Unlock()
	c.push(events.PlaylistChange, pos)
	return pos
}

// RemoveEntry removes the entry at index. The playing track keeps playing.
func (c *Controller) RemoveEntry(index int) bool {
	c.pl.Lock()
	ok := c.pl.Remove(index)
	queued := c.pl.QueueLen()
	c.syncPositionLocked()
	c.pl.Unlock()
	if !ok {
		return false
	}
	c.push(events.PlaylistChange, index)
	c.push(events.QueueChange, queued)
	return true
}

// ClearPlaylist removes every entry.
func (c *Controller) ClearPlaylist() {
	c.pl.Lock()
	c.pl.Clear()
	c.pl.Unlock()
	c.position.Store(-1)
	c.push(events.PlaylistChange, -1)
	c.push(events.QueueChange, 0)
}

// ToggleQueue enqueues or dequeues the entry at index and reports whether
// it is queued afterwards.
func (c *Controller) ToggleQueue(index int) bool {
	c.pl.Lock()
	queued := c.pl.ToggleQueue(index)
	n := c.pl.QueueLen()
	c.pl.Unlock()
	c.push(events.QueueChange, n)
	return queued
}

// syncPositionLocked follows the playing entry after the playlist moved
// around it. Caller holds the playlist lock.
func (c *Controller) syncPositionLocked() {
	if c.position.Load() < 0 {
		return
	}
	cur := c.pl.Current()
	if cur < 0 {
		c.position.Store(-1)
		return
	}
	c.position.Store(int32(cur + 1))
}
