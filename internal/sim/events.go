package sim

// EventCategory buckets session log entries for the observer.
type EventCategory string

const (
	EventMarket   EventCategory = "market"
	EventTravel   EventCategory = "travel"
	EventCombat   EventCategory = "combat"
	EventProgress EventCategory = "progress"
)

// Event is one line of the session log: something that happened on a day,
// phrased for display.
type Event struct {
	Day      int           `json:"day"`
	Category EventCategory `json:"category"`
	Message  string        `json:"message"`
}

// maxEventLog bounds the in-memory log; older entries roll off.
const maxEventLog = 128

// pushEvent appends to the session log. Caller holds the lock.
func (s *Session) pushEvent(cat EventCategory, msg string) {
	s.events = append(s.events, Event{Day: s.Clock.Day, Category: cat, Message: msg})
	if len(s.events) > maxEventLog {
		s.events = s.events[len(s.events)-maxEventLog:]
	}
}

// RecentEvents returns up to n log entries, oldest first. n <= 0 returns
// everything retained.
func (s *Session) RecentEvents(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.events) {
		n = len(s.events)
	}
	out := make([]Event, n)
	copy(out, s.events[len(s.events)-n:])
	return out
}
