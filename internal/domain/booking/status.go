package booking

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusDeclined},
	StatusApproved: {StatusDeclined},
}

// CanTransition reports whether a record may move from one status to another.
// Staying in place is allowed; declined is terminal.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
