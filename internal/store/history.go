package store

// DefaultHistoryCapacity bounds how many edits can be undone. Oldest
// snapshots are evicted first once the bound is hit.
const DefaultHistoryCapacity = 20

// history is the undo/redo state machine. It keeps a bounded list of full
// deep-copy snapshots plus a cursor:
//
//   - cursor == -1 ("at-present"): the live graph is the newest state and
//     there is nothing to redo.
//   - cursor == i ("in-past"): the live graph equals snapshots[i]; redo walks
//     forward, undo walks backward with a floor at index 0.
//
// The first undo from at-present pushes a synthetic snapshot of the current
// (post-edit) state so redo can return to it; reaching it again via redo
// collapses back to at-present and drops it.
type history struct {
	snapshots []State
	cursor    int
	capacity  int

	// restoring suppresses record calls while undo/redo installs a snapshot,
	// so restoring state is never itself recorded as an edit.
	restoring bool
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &history{cursor: -1, capacity: capacity}
}

// record captures the pre-mutation state. Called by every mutation right
// before a committed change; never called for failed validations.
func (h *history) record(pre State) {
	if h.restoring {
		return
	}
	if h.cursor != -1 {
		// A fresh edit from a historical point erases forward history. The
		// snapshot at the cursor already equals the pre-mutation graph, so
		// truncating through it doubles as the append.
		h.snapshots = h.snapshots[:h.cursor+1]
		h.cursor = -1
	} else {
		h.snapshots = append(h.snapshots, pre.Clone())
	}
	if len(h.snapshots) > h.capacity {
		h.snapshots = append([]State{}, h.snapshots[len(h.snapshots)-h.capacity:]...)
	}
}

func (h *history) canUndo() bool {
	if h.cursor == -1 {
		return len(h.snapshots) > 0
	}
	return h.cursor > 0
}

func (h *history) canRedo() bool {
	return h.cursor != -1
}

// undo steps backward and returns the snapshot to restore. current is the
// live state, captured as the synthetic redo target on the first step.
func (h *history) undo(current State) (State, bool) {
	if !h.canUndo() {
		return State{}, false
	}
	if h.cursor == -1 {
		h.snapshots = append(h.snapshots, current.Clone())
		h.cursor = len(h.snapshots) - 2
	} else {
		h.cursor--
	}
	return h.snapshots[h.cursor], true
}

// redo steps forward and returns the snapshot to restore. Reaching the
// newest entry collapses back to at-present and drops the synthetic
// current-state snapshot pushed by the first undo.
func (h *history) redo() (State, bool) {
	if !h.canRedo() {
		return State{}, false
	}
	h.cursor++
	if h.cursor == len(h.snapshots)-1 {
		top := h.snapshots[h.cursor]
		h.snapshots = h.snapshots[:h.cursor]
		h.cursor = -1
		return top, true
	}
	return h.snapshots[h.cursor], true
}

func (h *history) reset() {
	h.snapshots = nil
	h.cursor = -1
}
