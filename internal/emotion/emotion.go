// Package emotion implements the per-session emotional state machine that
// drives personality-flavored honeypot responses.
package emotion

import "sync"

// Emotion is one of the closed set of session moods. Confidence is the zero
// value and the state every session starts in.
type Emotion int

const (
	Confidence Emotion = iota
	Surprise
	Confusion
	Frustration
	SelfDoubt
	// Curiosity exists in some response tables but no built-in table routes
	// to it. It is reachable only through a custom Transitions map.
	Curiosity
)

var emotionNames = [...]string{
	Confidence:  "CONFIDENCE",
	Surprise:    "SURPRISE",
	Confusion:   "CONFUSION",
	Frustration: "FRUSTRATION",
	SelfDoubt:   "SELF_DOUBT",
	Curiosity:   "CURIOSITY",
}

func (e Emotion) String() string {
	if int(e) < len(emotionNames) {
		return emotionNames[e]
	}
	return "UNKNOWN"
}

// Transitions maps a current emotion to its successor. A missing key means
// the emotion sticks: Next returns the input unchanged.
type Transitions map[Emotion]Emotion

// Cycle is the canonical transition graph shared by the built-in response
// tables. Individual commands may carry their own Transitions, so the global
// graph is deliberately not a single automaton.
var Cycle = Transitions{
	Confidence:  Surprise,
	Surprise:    Confusion,
	Confusion:   Frustration,
	Frustration: SelfDoubt,
	SelfDoubt:   Confidence,
}

// Next returns the successor of e, or e itself if the table has no edge.
func (t Transitions) Next(e Emotion) Emotion {
	if next, ok := t[e]; ok {
		return next
	}
	return e
}

// State holds exactly one live emotion per session. Get and Set are plain
// register semantics: Set overwrites unconditionally, Get returns the last
// value set. Transition legality lives in the response tables, not here.
type State struct {
	mu  sync.Mutex
	cur Emotion
}

// NewState returns a State starting at Confidence.
func NewState() *State {
	return &State{cur: Confidence}
}

func (s *State) Get() Emotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *State) Set(e Emotion) {
	s.mu.Lock()
	s.cur = e
	s.mu.Unlock()
}

// Advance moves the state along t from its current value and returns the new
// emotion.
func (s *State) Advance(t Transitions) Emotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = t.Next(s.cur)
	return s.cur
}
