package signaling

import (
	"sort"

	"github.com/samber/lo"
)

// Store holds room membership and the connection -> rooms reverse index.
// Implementations keep both views consistent within a single call, and never
// retain a room whose member set is empty.
type Store interface {
	// Add inserts m into roomID, creating the room if needed. It reports
	// whether m was newly added.
	Add(roomID string, m Member) bool
	// Remove deletes connectionID from roomID. remaining is the member count
	// left afterwards; removed is false when the connection was not a member.
	Remove(roomID, connectionID string) (remaining int, removed bool)
	Members(roomID string) []Member
	Member(roomID, connectionID string) (Member, bool)
	RoomsOf(connectionID string) []string
	Rooms() []string
}

// MemoryStore is the process-local Store. Not safe for concurrent use.
type MemoryStore struct {
	rooms  map[string]map[string]Member
	byConn map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:  make(map[string]map[string]Member),
		byConn: make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) Add(roomID string, m Member) bool {
	members, ok := s.rooms[roomID]
	if !ok {
		members = make(map[string]Member)
		s.rooms[roomID] = members
	}
	if _, exists := members[m.ConnectionID]; exists {
		return false
	}
	members[m.ConnectionID] = m

	joined, ok := s.byConn[m.ConnectionID]
	if !ok {
		joined = make(map[string]struct{})
		s.byConn[m.ConnectionID] = joined
	}
	joined[roomID] = struct{}{}
	return true
}

func (s *MemoryStore) Remove(roomID, connectionID string) (int, bool) {
	members, ok := s.rooms[roomID]
	if !ok {
		return 0, false
	}
	if _, exists := members[connectionID]; !exists {
		return len(members), false
	}

	delete(members, connectionID)
	if len(members) == 0 {
		delete(s.rooms, roomID)
	}

	if joined, ok := s.byConn[connectionID]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(s.byConn, connectionID)
		}
	}
	return len(members), true
}

// Members returns the room's members ordered by connection id.
func (s *MemoryStore) Members(roomID string) []Member {
	members := lo.Values(s.rooms[roomID])
	sort.Slice(members, func(i, j int) bool {
		return members[i].ConnectionID < members[j].ConnectionID
	})
	return members
}

func (s *MemoryStore) Member(roomID, connectionID string) (Member, bool) {
	m, ok := s.rooms[roomID][connectionID]
	return m, ok
}

func (s *MemoryStore) RoomsOf(connectionID string) []string {
	rooms := lo.Keys(s.byConn[connectionID])
	sort.Strings(rooms)
	return rooms
}

func (s *MemoryStore) Rooms() []string {
	rooms := lo.Keys(s.rooms)
	sort.Strings(rooms)
	return rooms
}
