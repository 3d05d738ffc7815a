package layout

import (
	"fmt"
	"slices"

	"github.com/starford/jarvis/internal/apperr"
)

// DefaultWeight is the flex weight of a freshly opened window.
const DefaultWeight = 1.0

// FullPercent is the weight a lone window receives from SetSizeByPercent.
const FullPercent = 100.0

const minOtherWeight = 0.1

// OpenResult distinguishes a new window from a no-op open.
type OpenResult int

// Open outcomes.
const (
	Opened OpenResult = iota
	AlreadyOpen
)

// Registry holds the open windows in display order.
type Registry struct {
	windows   []Window
	focused   Kind
	focusLock bool
	history   *History
}

// NewRegistry creates an empty registry whose undo history keeps at most
// historyCapacity snapshots.
func NewRegistry(historyCapacity int) *Registry {
	return &Registry{
		windows: []Window{},
		history: NewHistory(historyCapacity),
	}
}

// Windows returns a value copy of the open windows.
func (r *Registry) Windows() []Window {
	return cloneWindows(r.windows)
}

// Get returns the window of the given kind.
func (r *Registry) Get(kind Kind) (Window, bool) {
	if i := indexOf(r.windows, kind); i >= 0 {
		return r.windows[i], true
	}
	return Window{}, false
}

// IsOpen reports whether a window of kind is open.
func (r *Registry) IsOpen(kind Kind) bool {
	return indexOf(r.windows, kind) >= 0
}

// Focused returns the most recently focused kind, if it is still open.
func (r *Registry) Focused() Kind {
	if r.IsOpen(r.focused) {
		return r.focused
	}
	return ""
}

// FocusLocked reports whether new panels are currently blocked.
func (r *Registry) FocusLocked() bool { return r.focusLock }

// SetFocusLock toggles focus lock. Closing stays permitted while locked.
func (r *Registry) SetFocusLock(on bool) { r.focusLock = on }

// Open appends a window of kind unless one is already open.
func (r *Registry) Open(kind Kind, title string) (OpenResult, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("layout: open %q: %w", kind, apperr.ErrInvalid)
	}
	if r.IsOpen(kind) {
		return AlreadyOpen, nil
	}
	if r.focusLock {
		return 0, fmt.Errorf("layout: open %s: %w", kind, apperr.ErrFocusLocked)
	}
	r.windows = append(r.windows, newWindow(kind, title, DefaultWeight))
	return Opened, nil
}

// Toggle closes kind if it is open and opens it otherwise. It returns true
// when the window is open afterwards.
func (r *Registry) Toggle(kind Kind, title string) (bool, error) {
	if r.IsOpen(kind) {
		r.Close(string(kind))
		return false, nil
	}
	if _, err := r.Open(kind, title); err != nil {
		return false, err
	}
	return true, nil
}

// Close removes the window with id. It reports whether anything was removed.
func (r *Registry) Close(id string) bool {
	for i, w := range r.windows {
		if w.ID == id {
			r.windows = append(r.windows[:i:i], r.windows[i+1:]...)
			return true
		}
	}
	return false
}

// Resize sets one window's weight directly, as a drag handle does.
func (r *Registry) Resize(id string, weight float64) bool {
	if weight <= 0 {
		return false
	}
	for i := range r.windows {
		if r.windows[i].ID == id {
			r.windows[i].Weight = weight
			return true
		}
	}
	return false
}

// SetSizeByPercent gives kind percent of the row and splits the remainder
// evenly across every other open window. A lone window is forced to full.
func (r *Registry) SetSizeByPercent(kind Kind, percent float64) error {
	target := indexOf(r.windows, kind)
	if target < 0 {
		return fmt.Errorf("layout: resize %s: %w", kind, apperr.ErrNotFound)
	}
	if len(r.windows) > 1 && (percent <= 0 || percent > FullPercent) {
		return fmt.Errorf("layout: resize %s to %.1f%%: %w", kind, percent, apperr.ErrInvalid)
	}
	redistribute(r.windows, target, percent)
	return nil
}

func redistribute(ws []Window, target int, percent float64) {
	others := len(ws) - 1
	if others == 0 {
		ws[target].Weight = FullPercent
		return
	}
	otherWeight := max(minOtherWeight, (FullPercent-percent)/float64(others))
	for i := range ws {
		if i == target {
			ws[i].Weight = percent
		} else {
			ws[i].Weight = otherWeight
		}
	}
}

// Restore replaces the open windows with a copy of ws.
func (r *Registry) Restore(ws []Window) {
	r.windows = dedupe(cloneWindows(ws))
}

// Apply runs a batch as one derived next state. The live list is only
// replaced once every instruction has been evaluated.
func (r *Registry) Apply(b Batch) BatchResult {
	var res BatchResult

	wasOpen := make(map[Kind]bool, len(r.windows))
	for _, w := range r.windows {
		wasOpen[w.Kind] = true
	}

	next := cloneWindows(r.windows)
	if b.ClearHUD {
		if len(next) > 0 {
			res.Applied++
		}
		next = next[:0]
	}
	focused := r.focused

	for _, raw := range b.Instructions {
		in := raw.Normalize()
		if err := in.Validate(); err != nil {
			res.Skipped = append(res.Skipped, raw)
			continue
		}
		i := indexOf(next, in.Target)

		switch in.Action {
		case ActionOpen, ActionFocus:
			if i >= 0 {
				if in.Size != nil {
					next[i].Weight = *in.Size
				}
				if in.Title != "" {
					next[i].Title = in.Title
				}
			} else {
				if r.focusLock && !wasOpen[in.Target] {
					res.Blocked = append(res.Blocked, in.Target)
					continue
				}
				weight := DefaultWeight
				if in.Size != nil {
					weight = *in.Size
				}
				next = append(next, newWindow(in.Target, in.Title, weight))
				i = len(next) - 1
			}
			if in.Percent != nil {
				redistribute(next, i, *in.Percent)
			}
			if in.Action == ActionFocus {
				focused = in.Target
			}
		case ActionClose:
			if i < 0 {
				continue
			}
			next = append(next[:i:i], next[i+1:]...)
		case ActionResize:
			if i < 0 || (in.Size == nil && in.Percent == nil) {
				res.Skipped = append(res.Skipped, raw)
				continue
			}
			if in.Percent != nil {
				redistribute(next, i, *in.Percent)
			} else {
				next[i].Weight = *in.Size
			}
		}
		res.Applied++
	}

	r.windows = next
	r.focused = focused
	return res
}

// Record pushes prev as a snapshot if the live layout no longer matches it,
// so every history entry undoes a visible change.
func (r *Registry) Record(prev []Window) bool {
	if slices.Equal(prev, r.windows) {
		return false
	}
	r.history.Push(prev)
	return true
}

// Revert restores the most recent snapshot. It returns false when there is
// no history, leaving the layout untouched.
func (r *Registry) Revert() bool {
	prev, ok := r.history.Pop()
	if !ok {
		return false
	}
	r.windows = prev
	return true
}

// HistoryLen returns the number of snapshots available for Revert.
func (r *Registry) HistoryLen() int { return r.history.Len() }

// dedupe keeps the first window of each kind; restored macros and
// persisted layouts come from outside and may repeat a kind.
func dedupe(ws []Window) []Window {
	seen := make(map[Kind]bool, len(ws))
	out := ws[:0]
	for _, w := range ws {
		if seen[w.Kind] || !w.Kind.Valid() {
			continue
		}
		seen[w.Kind] = true
		w.ID = string(w.Kind)
		if w.Weight <= 0 {
			w.Weight = DefaultWeight
		}
		if w.Title == "" {
			w.Title = w.Kind.DefaultTitle()
		}
		out = append(out, w)
	}
	return out
}
