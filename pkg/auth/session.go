package auth

// Session holds the SessionStatus of one runtime instance and notifies
// subscribers when it changes. It is created Unauthenticated and is passed
// explicitly to whoever needs it; there is no process-wide session.
//
// Session is owned by the event loop and is not safe for concurrent use.
type Session struct {
	status      SessionStatus
	subscribers []subscriber
	nextID      uint64
}

type subscriber struct {
	id uint64
	fn func(SessionStatus)
}

// NewSession creates an Unauthenticated session.
func NewSession() *Session {
	return &Session{status: Unauthenticated{}}
}

// Status returns the current status.
func (s *Session) Status() SessionStatus {
	return s.status
}

// Subscribe registers fn to run after every status change and returns a
// function that removes it.
func (s *Session) Subscribe(fn func(SessionStatus)) (cancel func()) {
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// begin marks a login as in flight.
func (s *Session) begin() {
	s.set(Authenticating{})
}

// Complete records a successful login.
func (s *Session) Complete(token Token) {
	s.set(Authenticated{Token: token})
}

// Fail records a failed login. The reason is not kept: every failure
// reverts to Unauthenticated.
func (s *Session) Fail(error) {
	s.set(Unauthenticated{})
}

// Clear tears the session down to Unauthenticated.
func (s *Session) Clear() {
	s.set(Unauthenticated{})
}

func (s *Session) set(next SessionStatus) {
	if next == s.status {
		return
	}
	s.status = next
	for _, sub := range append([]subscriber(nil), s.subscribers...) {
		sub.fn(next)
	}
}
