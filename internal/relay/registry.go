package relay

import "sync"

// Registry tracks the live connections of this process and their group
// memberships. It is entirely in-memory and process-local: sibling relay
// processes keep their own registries and are reached via the fabric.
//
// Safe for concurrent Join/Leave/Broadcast/Remove from any goroutine.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]struct{}
	// conns is the reverse index: every registered client and the groups
	// it belongs to. A client absent from conns has been removed and its
	// send channel closed.
	conns map[*Client]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]map[*Client]struct{}),
		conns:  make(map[*Client]map[string]struct{}),
	}
}

// Register adds a connection with no group memberships yet.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c]; !ok {
		r.conns[c] = make(map[string]struct{})
	}
}

// Join adds c to the named group. Joining twice is a no-op; joining after
// Remove is ignored (the connection is gone).
func (r *Registry) Join(c *Client, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	memberships, ok := r.conns[c]
	if !ok {
		return
	}
	memberships[group] = struct{}{}

	members, ok := r.groups[group]
	if !ok {
		members = make(map[*Client]struct{})
		r.groups[group] = members
	}
	members[c] = struct{}{}
}

// Leave removes c from the named group only.
func (r *Registry) Leave(c *Client, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if memberships, ok := r.conns[c]; ok {
		delete(memberships, group)
	}
	r.dropMember(c, group)
}

// Remove unregisters c from all groups and closes its send channel.
// Idempotent: a connection evicted during Broadcast and then removed by
// its read pump is handled once.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(c)
}

// Broadcast delivers payload to every live member of the group. A member
// that cannot keep up (full send buffer) is evicted, matching the policy
// for a disconnected peer: skipped silently, never an error.
func (r *Registry) Broadcast(group string, payload []byte) {
	// Sends happen under the read lock: Remove holds the write lock when
	// it closes a send channel, so no send can race a close.
	r.mu.RLock()
	var stuck []*Client
	for c := range r.groups[group] {
		select {
		case c.send <- payload:
		default:
			stuck = append(stuck, c)
		}
	}
	r.mu.RUnlock()

	if len(stuck) > 0 {
		r.mu.Lock()
		for _, c := range stuck {
			r.removeLocked(c)
		}
		r.mu.Unlock()
	}
}

// Send queues a frame for a single connection, dropping it if the buffer
// is full or the connection is gone. Used for direct replies such as
// mission acks.
func (r *Registry) Send(c *Client, payload []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.conns[c]; !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// GroupSize reports current local membership, for logging only.
func (r *Registry) GroupSize(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}

func (r *Registry) removeLocked(c *Client) {
	memberships, ok := r.conns[c]
	if !ok {
		return
	}
	delete(r.conns, c)
	for group := range memberships {
		r.dropMember(c, group)
	}
	close(c.send)
}

func (r *Registry) dropMember(c *Client, group string) {
	members, ok := r.groups[group]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.groups, group)
	}
}
