package chat

import "sync"

// Registry tracks in-flight stream sessions so they can be cancelled by id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*StreamSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*StreamSession)}
}

func (r *Registry) Add(s *StreamSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Cancel sets the cancellation flag of the caller's session. It reports false
// when the id is unknown or the session belongs to another user.
func (r *Registry) Cancel(id string, userID uint) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok || s.UserID != userID {
		return false
	}
	s.Cancel()
	return true
}

// CancelAll sets the flag of every registered session and reports how many
// there were.
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	sessions := make([]*StreamSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Cancel()
	}
	return len(sessions)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
