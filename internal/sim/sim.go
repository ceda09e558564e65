// Package sim runs a simulation session over the pure cause-and-effect
// evaluator. The session owns the current activation set, re-evaluates every
// rule whenever it changes, and latches output device states. Rule delays are
// honored by a coarse simulation clock: a rule's outputs latch once the rule
// has stayed triggered for its delay, checked on every tick.
package sim

import (
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/firesim/db"
	"github.com/thatsimonsguy/firesim/internal/causeeffect"
	"github.com/thatsimonsguy/firesim/internal/configdoc"
	"github.com/thatsimonsguy/firesim/internal/datadog"
	"github.com/thatsimonsguy/firesim/internal/notifications"
	"github.com/thatsimonsguy/firesim/internal/plan"
)

// ErrUnknownDevice is returned when an activation targets an instance id that
// is not on the plan.
var ErrUnknownDevice = errors.New("sim: unknown device")

// Session is a single simulation run over an immutable configuration document
// and plan snapshot. Safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	doc     *configdoc.Document
	snap    *plan.Snapshot
	history *sql.DB

	activated map[string]bool
	outputs   map[string]bool

	// firstTriggered remembers when each rule (by document index) first
	// entered the triggered state, so delayed rules fire delay seconds later.
	firstTriggered map[int]time.Time

	now  func() time.Time
	stop chan struct{}
}

// New creates a session. history may be nil to disable event recording.
func New(doc *configdoc.Document, snap *plan.Snapshot, history *sql.DB) *Session {
	return &Session{
		doc:            doc,
		snap:           snap,
		history:        history,
		activated:      make(map[string]bool),
		outputs:        make(map[string]bool),
		firstTriggered: make(map[int]time.Time),
		now:            time.Now,
	}
}

// Activate marks a placed device as alarming and re-evaluates.
func (s *Session) Activate(instanceID string) error {
	if _, ok := s.snap.Device(instanceID); !ok {
		return ErrUnknownDevice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activated[instanceID] {
		return nil
	}
	s.activated[instanceID] = true
	log.Info().Str("device", instanceID).Msg("Device activated")
	s.recordEvent(db.EventActivate, instanceID)
	s.refresh()
	return nil
}

// Clear removes a device from the activation set and re-evaluates.
func (s *Session) Clear(instanceID string) error {
	if _, ok := s.snap.Device(instanceID); !ok {
		return ErrUnknownDevice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.activated[instanceID] {
		return nil
	}
	delete(s.activated, instanceID)
	log.Info().Str("device", instanceID).Msg("Device cleared")
	s.recordEvent(db.EventClear, instanceID)
	s.refresh()
	return nil
}

// Reset clears the whole activation set, pending delays included.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activated = make(map[string]bool)
	s.firstTriggered = make(map[int]time.Time)
	log.Info().Msg("Simulation reset")
	s.recordEvent(db.EventReset, "")
	s.refresh()
}

// Activated returns the currently alarming input instance ids, sorted.
func (s *Session) Activated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.activated)
}

// Outputs returns the currently latched output instance ids, sorted.
func (s *Session) Outputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.outputs)
}

// Run starts the simulation clock. Each tick re-applies the rule set so that
// delayed rules latch once their delay has elapsed.
func (s *Session) Run(interval time.Duration) {
	s.mu.Lock()
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go func() {
		log.Info().Dur("interval", interval).Msg("Starting simulation clock")
		for {
			select {
			case <-stop:
				log.Info().Msg("Simulation clock stopped")
				return
			default:
			}
			time.Sleep(interval)
			s.mu.Lock()
			s.refresh()
			s.mu.Unlock()
		}
	}()
}

// Stop halts the simulation clock.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// refresh recomputes the latched outputs from the current activation
// snapshot. Callers must hold s.mu.
func (s *Session) refresh() {
	now := s.now()
	results := causeeffect.EvaluateRules(s.doc, s.snap, sortedKeys(s.activated))

	desired := make(map[string]bool)
	for i, res := range results {
		if !res.Triggered {
			delete(s.firstTriggered, i)
			continue
		}
		since, ok := s.firstTriggered[i]
		if !ok {
			since = now
			s.firstTriggered[i] = since
		}
		delay := time.Duration(res.Rule.Delay * float64(time.Second))
		if now.Sub(since) < delay {
			continue
		}
		for _, id := range res.Outputs {
			desired[id] = true
		}
	}

	wasAlarm := len(s.outputs) > 0
	s.outputs = desired
	isAlarm := len(desired) > 0

	datadog.Gauge("sim.outputs_active", float64(len(desired)))
	datadog.Gauge("sim.inputs_active", float64(len(s.activated)))

	if isAlarm && !wasAlarm {
		log.Warn().Int("outputs", len(desired)).Msg("Alarm raised")
		s.recordEvent(db.EventAlarmRaised, "")
		s.notify("Alarm raised", "Output devices are sounding", notifications.PriorityUrgent)
	}
	if !isAlarm && wasAlarm {
		log.Info().Msg("Alarm cleared")
		s.recordEvent(db.EventAlarmCleared, "")
		s.notify("Alarm cleared", "All output devices are silent", notifications.PriorityDefault)
	}
}

func (s *Session) recordEvent(eventType, deviceID string) {
	datadog.Count("sim.events", 1, "type:"+eventType)
	if s.history == nil {
		return
	}
	if err := db.InsertSimEvent(s.history, eventType, deviceID, len(s.outputs)); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("Failed to record sim event")
	}
}

func (s *Session) notify(title, message string, priority int) {
	if err := notifications.Send(title, message, priority); err != nil {
		log.Debug().Err(err).Msg("Notification not sent")
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
