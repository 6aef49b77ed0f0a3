package session

import (
	"log"
	"sort"
	"sync"

	"github.com/chensy618/HoneyFarm/internal/emotion"
	"github.com/chensy618/HoneyFarm/internal/personality"
)

// ResponseFunc produces one emotion-flavored line for a faked command, given
// the session's inferred trait and current emotion. Advancing the emotion
// state is the function's own side effect; a function that forgets leaves the
// emotion stuck.
type ResponseFunc func(s *Session, trait personality.Trait, e emotion.Emotion) string

// PersonalityResponse is the uniform call convention used by every faked
// command. It is a silent no-op until a profile has been inferred for the
// session: nothing is written and the emotion register is untouched. A
// non-empty result is written with a trailing newline.
//
// The response function runs inside a recover boundary so a broken response
// table can never abort the hosting command.
func PersonalityResponse(s *Session, fn ResponseFunc, write func(string)) {
	if s == nil || fn == nil {
		return
	}
	profile, ok := s.Profile()
	if !ok || profile == nil {
		return
	}

	msg := safeResponse(s, fn, profile.Trait, s.Emotion.Get())
	if msg != "" {
		write(msg + "\n")
	}
}

func safeResponse(s *Session, fn ResponseFunc, trait personality.Trait, e emotion.Emotion) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("personality response panic (trait=%s emotion=%s): %v", trait.Label(), e, r)
			msg = ""
		}
	}()
	return fn(s, trait, e)
}

// Registry holds the response providers for faked commands. It replaces the
// import-time map mutation of the original shims with explicit registration:
// built once at startup, then read-only.
type Registry struct {
	mu sync.RWMutex
	m  map[string]ResponseFunc
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]ResponseFunc)}
}

// Register binds a command name to its response provider. Later registrations
// for the same name win, independent of registration order elsewhere.
func (r *Registry) Register(name string, fn ResponseFunc) {
	r.mu.Lock()
	r.m[name] = fn
	r.mu.Unlock()
}

// Lookup returns the provider for a command name.
func (r *Registry) Lookup(name string) (ResponseFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.m[name]
	return fn, ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.m))
	for name := range r.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
