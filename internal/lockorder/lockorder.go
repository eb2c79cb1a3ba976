// Package lockorder provides a mutex that can check the lock nesting rules of
// the shared state objects.
//
// A Mutex marked Leaf must be the innermost lock: while a goroutine holds a
// leaf lock it may not acquire any other tracked lock. Checking is off by
// default and costs nothing then; tests and debug builds turn it on with
// Enable.
package lockorder

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// Violation describes a forbidden acquisition.
type Violation struct {
	Held      string
	Acquiring string
}

func (v Violation) Error() string {
	return fmt.Sprintf("lockorder: acquiring %q while holding leaf lock %q", v.Acquiring, v.Held)
}

var (
	enabled atomic.Bool

	trackMu   sync.Mutex
	held      = make(map[uint64][]*Mutex)
	onViolate func(Violation)
)

// Enable turns checking on.
func Enable() { enabled.Store(true) }

// Disable turns checking off and forgets all tracked holders.
func Disable() {
	enabled.Store(false)
	trackMu.Lock()
	held = make(map[uint64][]*Mutex)
	trackMu.Unlock()
}

// Enabled reports whether checking is on.
func Enabled() bool { return enabled.Load() }

// OnViolation installs fn to be called instead of panicking. Passing nil
// restores the panic.
func OnViolation(fn func(Violation)) {
	trackMu.Lock()
	onViolate = fn
	trackMu.Unlock()
}

// Mutex is a sync.Mutex with a name and an optional leaf constraint.
// The zero value is an unnamed, non-leaf mutex.
type Mutex struct {
	Name string
	Leaf bool

	mu sync.Mutex
}

// Lock acquires m. With checking on, it first verifies that the calling
// goroutine holds no leaf lock.
func (m *Mutex) Lock() {
	if !enabled.Load() {
		m.mu.Lock()
		return
	}
	gid := goroutineID()
	check(gid, m)
	m.mu.Lock()
	trackMu.Lock()
	held[gid] = append(held[gid], m)
	trackMu.Unlock()
}

// Unlock releases m.
func (m *Mutex) Unlock() {
	if enabled.Load() {
		release(goroutineID(), m)
	}
	m.mu.Unlock()
}

// Holding returns the names of the tracked locks held by the calling
// goroutine, outermost first. It is empty when checking is off.
func Holding() []string {
	if !enabled.Load() {
		return nil
	}
	gid := goroutineID()
	trackMu.Lock()
	defer trackMu.Unlock()
	names := make([]string, 0, len(held[gid]))
	for _, m := range held[gid] {
		names = append(names, m.Name)
	}
	return names
}

func check(gid uint64, m *Mutex) {
	trackMu.Lock()
	var v *Violation
	for _, h := range held[gid] {
		if h.Leaf {
			v = &Violation{Held: h.Name, Acquiring: m.Name}
			break
		}
	}
	fn := onViolate
	trackMu.Unlock()

	if v == nil {
		return
	}
	if fn != nil {
		fn(*v)
		return
	}
	panic(v.Error())
}

func release(gid uint64, m *Mutex) {
	trackMu.Lock()
	defer trackMu.Unlock()
	locks := held[gid]
	for i := len(locks) - 1; i >= 0; i-- {
		if locks[i] == m {
			locks = append(locks[:i], locks[i+1:]...)
			break
		}
	}
	if len(locks) == 0 {
		delete(held, gid)
		return
	}
	held[gid] = locks
}

var goroutinePrefix = []byte("goroutine ")

// goroutineID parses the current goroutine's id from its stack header.
// Only used while checking is enabled.
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		panic(fmt.Sprintf("lockorder: cannot parse goroutine id: %v", err))
	}
	return id
}
