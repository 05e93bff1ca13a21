package navigation

// HistoryLog is the session's ordered list of visited targets and the
// cursor into it. pos is -1 exactly when the log is empty.
type HistoryLog struct {
	entries []Target
	pos     int
}

// NewHistoryLog returns an empty log.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{pos: -1}
}

// Record appends t. Entries after the cursor are dropped first, so a new
// navigation from mid-history discards the old forward path.
func (h *HistoryLog) Record(t Target) {
	if h.pos < len(h.entries)-1 {
		clear(h.entries[h.pos+1:])
		h.entries = h.entries[:h.pos+1]
	}
	h.entries = append(h.entries, t)
	h.pos = len(h.entries) - 1
}

// Back moves the cursor one step back and returns the target there.
func (h *HistoryLog) Back() (Target, bool) {
	if !h.CanGoBack() {
		return Target{}, false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Forward moves the cursor one step forward and returns the target there.
func (h *HistoryLog) Forward() (Target, bool) {
	if !h.CanGoForward() {
		return Target{}, false
	}
	h.pos++
	return h.entries[h.pos], true
}

// CanGoBack reports whether Back would move the cursor.
func (h *HistoryLog) CanGoBack() bool {
	return h.pos > 0
}

// CanGoForward reports whether Forward would move the cursor. It is false
// right after Record.
func (h *HistoryLog) CanGoForward() bool {
	return h.pos < len(h.entries)-1
}

// Current returns the entry under the cursor.
func (h *HistoryLog) Current() (Target, bool) {
	if h.pos < 0 {
		return Target{}, false
	}
	return h.entries[h.pos], true
}

// Len is the number of recorded entries.
func (h *HistoryLog) Len() int { return len(h.entries) }

// Pos is the cursor index, -1 for an empty log.
func (h *HistoryLog) Pos() int { return h.pos }

// Entries returns a copy of the log in visit order.
func (h *HistoryLog) Entries() []Target {
	out := make([]Target, len(h.entries))
	copy(out, h.entries)
	return out
}
