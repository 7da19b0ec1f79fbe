// Package auth decides which chat ids may use the bot.
//
// Policy comes from the allowed_users config list:
//   - empty list: nobody is permitted
//   - list containing 0: everybody is permitted
//   - anything else: explicit allow-list
package auth

import "sync"

type Mode int

const (
	ModeNone Mode = iota
	ModeAll
	ModeList
)

// Policy is an immutable snapshot of the authorization rules.
type Policy struct {
	mode    Mode
	allowed map[int64]struct{}
}

// PolicyFromIDs maps the raw allowed_users config value to a Policy.
// The 0 wildcard wins over any other entries.
func PolicyFromIDs(ids []int64) Policy {
	if len(ids) == 0 {
		return Policy{mode: ModeNone}
	}
	allowed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return Policy{mode: ModeAll}
		}
		allowed[id] = struct{}{}
	}
	return Policy{mode: ModeList, allowed: allowed}
}

func (p Policy) Mode() Mode { return p.mode }

func (p Policy) permits(id int64) bool {
	switch p.mode {
	case ModeAll:
		return true
	case ModeList:
		_, ok := p.allowed[id]
		return ok
	default:
		return false
	}
}

// Authorizer answers permission checks against the current policy.
// Apply swaps the policy at runtime (config hot reload).
type Authorizer struct {
	mu sync.RWMutex
	p  Policy
}

func New(p Policy) *Authorizer {
	return &Authorizer{p: p}
}

func (a *Authorizer) Permitted(id int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.p.permits(id)
}

func (a *Authorizer) Apply(p Policy) {
	a.mu.Lock()
	a.p = p
	a.mu.Unlock()
}
