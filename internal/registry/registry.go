package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/tether/internal/platform"
)

// Role names a logical window in the cluster.
type Role string

const (
	RoleAnchor     Role = "anchor"
	RoleChat       Role = "chat"
	RoleTranscript Role = "transcript"
	RoleSettings   Role = "settings"
)

// KnownRoles lists the roles the layout engine understands, anchor first.
func KnownRoles() []Role {
	return []Role{RoleAnchor, RoleChat, RoleTranscript, RoleSettings}
}

// Registry maps roles to live window handles. Handles stay owned by the
// host; the registry never calls into them.
type Registry struct {
	mu      sync.RWMutex
	windows map[Role]platform.Window
}

// New wraps store as the registry's backing map. A nil store is a wiring
// bug and panics.
func New(store map[Role]platform.Window) *Registry {
	if store == nil {
		panic("registry: backing store must be a non-nil map")
	}
	return &Registry{windows: store}
}

// NewEmpty returns a registry over a fresh map.
func NewEmpty() *Registry {
	return New(make(map[Role]platform.Window))
}

// Get returns the window bound to role.
func (r *Registry) Get(role Role) (platform.Window, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.windows[role]
	return w, ok
}

// Set binds role to win, replacing any previous handle. A nil win removes
// the role.
func (r *Registry) Set(role Role, win platform.Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if win == nil {
		delete(r.windows, role)
		return
	}
	r.windows[role] = win
}

// Delete unbinds role.
func (r *Registry) Delete(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, role)
}

// Has reports whether role is bound.
func (r *Registry) Has(role Role) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.windows[role]
	return ok
}

// Keys returns the registered roles in sorted order.
func (r *Registry) Keys() []Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Role, 0, len(r.windows))
	for role := range r.windows {
		keys = append(keys, role)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ParseRole validates a role name.
func ParseRole(name string) (Role, error) {
	for _, role := range KnownRoles() {
		if string(role) == name {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", name)
}
