package printer

import (
	mrand "math/rand"
	"sync"
	"time"
)

// Identity is the printer fingerprint a connection sees: model string for
// INFO ID, status code and idle display for INFO STATUS.
type Identity struct {
	Model    string
	Code     int
	ReadyMsg string
	Online   bool
}

// DefaultIdentity is the stock fingerprint used when rotation is off.
var DefaultIdentity = Identity{
	Model:    "hp LaserJet 4200",
	Code:     10001,
	ReadyMsg: "Ready",
	Online:   true,
}

var identityModels = []string{
	"hp LaserJet 4200",
	"hp LaserJet 4250",
	"hp LaserJet 4300",
	"HP LaserJet 600 M602",
	"HP LaserJet M402dn",
	"HP Color LaserJet CP2025dn",
}

var identityReadyMsgs = []string{
	"Ready",
	"READY",
	"Processing...",
	"Sleep mode on",
}

// IdentityPool hands out the current fingerprint and optionally rotates it
// on an interval so repeat scanners see different hardware.
type IdentityPool struct {
	mu  sync.RWMutex
	cur Identity
}

// NewIdentityPool starts from the stock identity. When rotate is true a new
// fingerprint is drawn every hour.
func NewIdentityPool(rotate bool) *IdentityPool {
	p := &IdentityPool{cur: DefaultIdentity}
	if rotate {
		p.cur = randomIdentity()
		go p.rotateLoop()
	}
	return p
}

// Get returns a consistent snapshot. Callers keep the result for the
// lifetime of a connection.
func (p *IdentityPool) Get() Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cur
}

// SetReadyMsg updates the idle display used for new connections; the config
// watcher calls this on reload.
func (p *IdentityPool) SetReadyMsg(msg string) {
	p.mu.Lock()
	p.cur.ReadyMsg = msg
	p.mu.Unlock()
}

func (p *IdentityPool) rotateLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		next := randomIdentity()
		p.mu.Lock()
		p.cur = next
		p.mu.Unlock()
	}
}

func randomIdentity() Identity {
	rng := mrand.New(mrand.NewSource(time.Now().UnixNano()))
	return Identity{
		Model:    identityModels[rng.Intn(len(identityModels))],
		Code:     10001,
		ReadyMsg: identityReadyMsgs[rng.Intn(len(identityReadyMsgs))],
		Online:   true,
	}
}
