package flow

import (
	"time"

	"jamestronic/models"
)

// adjacency maps each state to the set of states it may transition into.
// Built from the happy-path order plus the universal edge to CANCELLED;
// terminal states have no outgoing edges.
var adjacency = buildAdjacency()

func buildAdjacency() map[models.BookingState]map[models.BookingState]bool {
	table := make(map[models.BookingState]map[models.BookingState]bool)
	path := models.HappyPath
	for i, state := range path {
		if state.IsTerminal() {
			table[state] = map[models.BookingState]bool{}
			continue
		}
		next := map[models.BookingState]bool{models.StateCancelled: true}
		if i+1 < len(path) {
			next[path[i+1]] = true
		}
		table[state] = next
	}
	table[models.StateCancelled] = map[models.BookingState]bool{}
	return table
}

// CanTransition reports whether the edge from→to is legal.
func CanTransition(from, to models.BookingState) bool {
	return adjacency[from][to]
}

// StateMachine enforces legal lifecycle transitions for one booking. Fields
// are exported so the whole machine round-trips through the context store.
type StateMachine struct {
	Current models.BookingState  `json:"currentState"`
	History []models.StateRecord `json:"history"`
}

// NewStateMachine starts a machine in INITIATED with a single history entry.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		Current: models.StateInitiated,
		History: []models.StateRecord{{State: models.StateInitiated, EnteredAt: time.Now()}},
	}
}

// Transition moves the machine to target if the adjacency table allows it.
// On rejection the machine is left untouched and an invalid_transition
// error reports the rejected edge. This is the only way to change Current;
// callers must not mutate the fields directly.
func (m *StateMachine) Transition(target models.BookingState) error {
	if !CanTransition(m.Current, target) {
		return newInvalidTransitionError(string(m.Current), string(target))
	}
	m.Current = target
	m.History = append(m.History, models.StateRecord{State: target, EnteredAt: time.Now()})
	return nil
}

// RiskLevel returns the static risk classification of the current state.
func (m *StateMachine) RiskLevel() models.RiskLevel {
	return models.RiskForState(m.Current)
}
