package internal

import (
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"
)

// DefaultDebounce is the autosave coalescing window.
const DefaultDebounce = 1500 * time.Millisecond

// Autosaver keeps one canvas's persisted state eventually consistent with its
// in-memory graph. Mutations are observed, coalesced over a debounce window,
// and committed through the repository's replace-semantics save. Saves for the
// same canvas never overlap.
type Autosaver struct {
	repo     *Repository
	canvasID string
	debounce time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	latest    snapshot
	savedHash uint64
	lastSaved time.Time
	closed    bool

	// saveMu serializes commits; a timer firing mid-save waits here instead
	// of racing the in-flight replace transaction.
	saveMu sync.Mutex

	onSave  func()
	onError func(error)
}

type snapshot struct {
	nodes []Node
	edges []Edge
	hash  uint64
}

// NewAutosaver creates an autosaver for one canvas. A zero debounce uses
// DefaultDebounce.
func NewAutosaver(repo *Repository, canvasID string, debounce time.Duration) *Autosaver {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Autosaver{
		repo:     repo,
		canvasID: canvasID,
		debounce: debounce,
	}
}

// OnSave registers a callback invoked after each successful save.
func (a *Autosaver) OnSave(fn func()) {
	a.mu.Lock()
	a.onSave = fn
	a.mu.Unlock()
}

// OnError registers a callback invoked when a save attempt fails.
func (a *Autosaver) OnError(fn func(error)) {
	a.mu.Lock()
	a.onError = fn
	a.mu.Unlock()
}

// Prime records the state already persisted so the first observation does not
// trigger a redundant write. Called right after loading a canvas.
func (a *Autosaver) Prime(nodes []Node, edges []Edge) {
	a.mu.Lock()
	a.savedHash = stateHash(nodes, edges)
	a.mu.Unlock()
}

// Observe notes the current graph state. If it structurally differs from the
// last persisted state the debounce timer is (re)armed; otherwise nothing
// happens, so irrelevant re-renders cost no writes.
func (a *Autosaver) Observe(nodes []Node, edges []Edge) {
	h := stateHash(nodes, edges)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || h == a.savedHash {
		return
	}

	a.latest = snapshot{
		nodes: append([]Node(nil), nodes...),
		edges: append([]Edge(nil), edges...),
		hash:  h,
	}

	// Only one timer may be live; further changes reset it.
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.fire)
}

// LastSaved returns when the most recent successful save completed.
func (a *Autosaver) LastSaved() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSaved
}

// SaveNow commits the latest observed state immediately, bypassing the
// debounce window.
func (a *Autosaver) SaveNow() error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	return a.save()
}

// Close tears the autosaver down: the timer is stopped and one final save is
// attempted with the latest state. Errors from the final flush are logged,
// not returned; teardown must never block the host.
func (a *Autosaver) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	if err := a.save(); err != nil {
		LogWarn("Final autosave for canvas %s failed: %v", a.canvasID, err)
	}
}

// fire runs when the debounce window elapses.
func (a *Autosaver) fire() {
	if err := a.save(); err != nil {
		LogError("Autosave for canvas %s failed: %v", a.canvasID, err)
	}
}

// save commits the latest snapshot if it still differs from the persisted
// state. On failure the saved hash is left untouched so the next observed
// change retries naturally.
func (a *Autosaver) save() error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	snap := a.latest
	saved := a.savedHash
	onSave, onError := a.onSave, a.onError
	a.mu.Unlock()

	if snap.nodes == nil && snap.edges == nil {
		return nil
	}
	if snap.hash == saved {
		return nil
	}

	if err := a.repo.SaveCanvasState(a.canvasID, snap.nodes, snap.edges); err != nil {
		if onError != nil {
			onError(err)
		}
		return err
	}

	a.mu.Lock()
	a.savedHash = snap.hash
	a.lastSaved = time.Now()
	a.mu.Unlock()

	if onSave != nil {
		onSave()
	}
	return nil
}

// stateHash computes a structural fingerprint of a node/edge pair. JSON
// marshalling keeps field order stable, so equal states hash equal.
func stateHash(nodes []Node, edges []Edge) uint64 {
	h := fnv.New64a()
	enc := json.NewEncoder(h)
	_ = enc.Encode(nodes)
	_ = enc.Encode(edges)
	return h.Sum64()
}
