package combat

// EventType tags a combat event for the presentation layer.
type EventType string

const (
	EventRound       EventType = "round"
	EventFire        EventType = "fire"
	EventRepair      EventType = "repair"
	EventQuickRepair EventType = "quick_repair"
	EventFlee        EventType = "flee"
	EventMoraleShift EventType = "morale_shift"
	EventPanic       EventType = "panic"
	EventCrewScatter EventType = "crew_scatter"
	EventFinished    EventType = "finished"
)

// Event is one observable combat effect. The engine pushes events in
// resolution order; the presentation drains them with PopEvent.
type Event struct {
	Type   EventType
	Side   Side
	Round  int
	Amount int // damage dealt, HP repaired, or 0

	Crit    bool
	Miss    bool
	Counter bool // chip-damage counter-fire, not a regular attack

	// Morale tier transition, set on morale_shift events.
	TierFrom MoraleTier
	TierTo   MoraleTier

	Outcome Outcome // set on finished events
}

// Queue size bound. Oldest events drop first when the presentation falls
// behind; combat state itself is never affected.
const maxQueuedEvents = 64

func (e *Engine) pushEvent(ev Event) {
	ev.Round = e.round
	if len(e.events) >= maxQueuedEvents {
		e.events = e.events[1:]
	}
	e.events = append(e.events, ev)
}

// PopEvent returns the oldest pending event, or nil when the queue is empty.
func (e *Engine) PopEvent() *Event {
	if len(e.events) == 0 {
		return nil
	}
	ev := e.events[0]
	e.events = e.events[1:]
	return &ev
}
