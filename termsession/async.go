package termsession

// StartOutputThread switches the session into Mode B: commits are
// queued to a depth-1 mailbox and drained by a single background
// goroutine, so a producer that calls CommitAsync faster than the
// terminal can keep up always presents only the latest frame rather
// than backing up a queue of stale ones. Calling it twice is a no-op.
func (s *Session) StartOutputThread() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mailbox != nil {
		return
	}
	s.mailbox = make(chan struct{}, 1)
	s.outputDone = make(chan struct{})
	go s.outputLoop()
}

// CommitAsync requests a commit without blocking the caller on
// terminal I/O. If the mailbox already holds a pending request, this
// call is coalesced into it: the background goroutine always commits
// whatever s.frame holds at the time it wakes, not a queued snapshot.
// StartOutputThread must have been called first; otherwise this is
// equivalent to a synchronous Commit.
func (s *Session) CommitAsync() {
	s.mu.Lock()
	mailbox := s.mailbox
	s.mu.Unlock()

	if mailbox == nil {
		_ = s.Commit()
		return
	}
	select {
	case mailbox <- struct{}{}:
	default:
	}
}

func (s *Session) outputLoop() {
	s.mu.Lock()
	mailbox := s.mailbox
	done := s.outputDone
	s.mu.Unlock()

	for {
		select {
		case <-mailbox:
			_ = s.Commit()
		case <-done:
			return
		}
	}
}

// StopOutputThread stops the Mode B background goroutine, returning the
// session to synchronous Commit semantics. The mailbox is not drained: a
// commit request still pending when it is called may be dropped.
func (s *Session) StopOutputThread() {
	s.mu.Lock()
	done := s.outputDone
	s.mailbox = nil
	s.outputDone = nil
	s.mu.Unlock()

	if done != nil {
		close(done)
	}
}
