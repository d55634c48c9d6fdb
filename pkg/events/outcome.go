package events

// Outcome is the result of a table operation and the kind of an Event.
type Outcome uint8

const (
	OK Outcome = iota
	Found
	NotFound
	Inserted
	Updated
	Deleted
	Timeout
	Full
)

var outcomeNames = [...]string{
	OK:       "ok",
	Found:    "found",
	NotFound: "not_found",
	Inserted: "inserted",
	Updated:  "updated",
	Deleted:  "deleted",
	Timeout:  "timeout",
	Full:     "full",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Mutates reports whether the outcome changed table state.
func (o Outcome) Mutates() bool {
	switch o {
	case Inserted, Updated, Deleted, Timeout:
		return true
	}
	return false
}
