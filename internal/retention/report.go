package retention

// Action is the outcome recorded for an evaluated item.
type Action string

const (
	ActionKept         Action = "kept"
	ActionProtected    Action = "protected"
	ActionDeleted      Action = "deleted"
	ActionSimulated    Action = "would_delete"
	ActionDeleteFailed Action = "delete_failed"
)

// Decision records how one item was evaluated.
type Decision struct {
	Kind     ItemKind
	ID       string
	Title    string
	Show     string
	Action   Action
	Reason   string
	Watched  bool
	IdleDays int
	Ratio    float64
	SeedDays float64

	SeedReason SeedReason
	// FreedBytes is the free-space gain since the previous sample. It is zero
	// when no sample could be taken.
	FreedBytes int64
}

// Removed reports whether the item was deleted or would be in a dry run.
func (d Decision) Removed() bool {
	return d.Action == ActionDeleted || d.Action == ActionSimulated
}

// Report collects an evaluator's decisions.
type Report struct {
	Decisions []Decision
	// Aborted holds the notified abort message when the evaluator stopped early.
	Aborted string
}

func (r *Report) add(d Decision) {
	r.Decisions = append(r.Decisions, d)
}

// Count returns how many decisions ended with the given action.
func (r Report) Count(action Action) int {
	n := 0
	for _, d := range r.Decisions {
		if d.Action == action {
			n++
		}
	}
	return n
}

// FreedBytes sums the measured free-space gains.
func (r Report) FreedBytes() int64 {
	var total int64
	for _, d := range r.Decisions {
		total += d.FreedBytes
	}
	return total
}
