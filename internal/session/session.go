// Package session carries the per-attacker state shared by every faked
// command: the emotion register, the observed command history, and the
// lazily-inferred personality profile.
package session

import (
	"strings"
	"sync"

	"github.com/chensy618/HoneyFarm/internal/emotion"
	"github.com/chensy618/HoneyFarm/internal/personality"
)

// Session is created at connection start and destroyed at teardown. It is
// owned by a single connection handler; the mutex only guards against the
// host framework logging from another goroutine.
type Session struct {
	ID string
	IP string

	// Emotion starts at Confidence and is mutated only by response-function
	// side effects.
	Emotion *emotion.State

	mu       sync.Mutex
	history  []string
	profile  *personality.Profile
	inferred bool
}

func New(id, ip string) *Session {
	return &Session{
		ID:      id,
		IP:      ip,
		Emotion: emotion.NewState(),
	}
}

// RecordCommand extracts the command name from a raw input line and appends
// it to the session history. Leading VAR=val assignments are stripped the way
// the shell does before dispatch; sudo is transparent.
func (s *Session) RecordCommand(line string) {
	name := CommandName(line)
	if name == "" {
		return
	}
	s.mu.Lock()
	s.history = append(s.history, name)
	s.mu.Unlock()
}

// Commands returns a copy of the accumulated command-name history.
func (s *Session) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// InferPersonality classifies the history exactly once per session and
// caches the result, nil included. Later commands never change the cached
// profile: responses deliberately reflect the profile at first inference.
func (s *Session) InferPersonality(tax *personality.Taxonomy) *personality.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inferred {
		return s.profile
	}
	s.profile = tax.Classify(s.history)
	s.inferred = true
	return s.profile
}

// Profile returns the cached profile. ok is false until InferPersonality has
// run; the profile itself may still be nil when nothing could be inferred.
func (s *Session) Profile() (*personality.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.inferred
}

// CommandName reduces a raw shell line to the bare command name used by the
// classifier: assignments are stripped, sudo is skipped, and a path prefix is
// removed so /bin/ping and ping score the same.
func CommandName(line string) string {
	fields := strings.Fields(line)
	for len(fields) > 0 {
		first := fields[0]
		switch {
		case strings.Contains(first, "=") && !strings.HasPrefix(first, "./"):
			fields = fields[1:]
		case first == "sudo":
			fields = fields[1:]
		default:
			if strings.HasPrefix(first, "/") {
				if idx := strings.LastIndex(first, "/"); idx >= 0 {
					first = first[idx+1:]
				}
			}
			return first
		}
	}
	return ""
}
