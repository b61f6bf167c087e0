package worker

import (
	"context"
	"log"
	"time"
)

const defaultSweepInterval = 5 * time.Minute

type staleSessionCloser interface {
	CloseStale(ctx context.Context, idle time.Duration) (int, error)
}

// SessionSweeper periodically closes study sessions whose client stopped sending
// heartbeats, so their time is still credited.
type SessionSweeper struct {
	sessions staleSessionCloser
	idle     time.Duration
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
}

func NewSessionSweeper(sessions staleSessionCloser, idle, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SessionSweeper{
		sessions: sessions,
		idle:     idle,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *SessionSweeper) Start() {
	go s.loop()
	log.Printf("Session sweeper started (idle %s, every %s)", s.idle, s.interval)
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *SessionSweeper) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
	<-s.done
}

func (s *SessionSweeper) loop() {
	defer close(s.done)

	// Run on startup as well as by interval.
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	closed, err := s.sessions.CloseStale(ctx, s.idle)
	if err != nil {
		log.Printf("session sweeper: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("session sweeper: closed %d idle study sessions", closed)
	}
}
