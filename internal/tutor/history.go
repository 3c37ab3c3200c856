package tutor

// History is the append-only transcript of a lesson. Turns are added
// whole, after all of a turn's data has arrived; there is no partial or
// streaming mutation. History is owned by a single goroutine (the app
// loop) and is not safe for concurrent use.
type History struct {
	turns []Turn
}

// Append records a completed turn, failed ones included.
func (h *History) Append(t Turn) {
	h.turns = append(h.turns, t)
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns a copy of the transcript in arrival order.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Last returns the most recent turn, or false when the history is empty.
func (h *History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}
