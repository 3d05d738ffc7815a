package layout

// DefaultHistoryCapacity bounds the undo stack.
const DefaultHistoryCapacity = 10

// History is a bounded stack of layout snapshots. The oldest snapshot is
// evicted once capacity is exceeded. Snapshots are stored and returned by
// value so a popped layout never aliases a live one.
type History struct {
	capacity  int
	snapshots [][]Window
}

// NewHistory creates a history holding at most capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// Push stores a copy of ws.
func (h *History) Push(ws []Window) {
	h.snapshots = append(h.snapshots, cloneWindows(ws))
	if len(h.snapshots) > h.capacity {
		h.snapshots = append(h.snapshots[:0:0], h.snapshots[len(h.snapshots)-h.capacity:]...)
	}
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() ([]Window, bool) {
	n := len(h.snapshots)
	if n == 0 {
		return nil, false
	}
	top := h.snapshots[n-1]
	h.snapshots[n-1] = nil
	h.snapshots = h.snapshots[:n-1]
	return cloneWindows(top), true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.snapshots) }
