// Package presence tracks which identities are online and through which
// connections.
package presence

import (
	"sort"

	"github.com/samber/lo"
)

// Store maps an identity to the set of its live connections. One identity may
// hold several connections at once (multi-device).
//
// Register and Unregister are called exactly once per connect/disconnect pair.
// Unregister of an unknown pair is a no-op.
type Store interface {
	Register(identity, connectionID string)
	Unregister(identity, connectionID string)
	Connections(identity string) []string
	Online(identity string) bool
	Len() int
}

// Memory is the process-local Store. It is not safe for concurrent use; the
// hub goroutine owns it.
type Memory struct {
	byIdentity map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{byIdentity: make(map[string]map[string]struct{})}
}

func (m *Memory) Register(identity, connectionID string) {
	conns, ok := m.byIdentity[identity]
	if !ok {
		conns = make(map[string]struct{})
		m.byIdentity[identity] = conns
	}
	conns[connectionID] = struct{}{}
}

func (m *Memory) Unregister(identity, connectionID string) {
	conns, ok := m.byIdentity[identity]
	if !ok {
		return
	}
	delete(conns, connectionID)
	if len(conns) == 0 {
		delete(m.byIdentity, identity)
	}
}

// Connections returns the identity's connection ids in sorted order.
func (m *Memory) Connections(identity string) []string {
	ids := lo.Keys(m.byIdentity[identity])
	sort.Strings(ids)
	return ids
}

func (m *Memory) Online(identity string) bool {
	return len(m.byIdentity[identity]) > 0
}

// Len reports the number of identities with at least one live connection.
func (m *Memory) Len() int {
	return len(m.byIdentity)
}
