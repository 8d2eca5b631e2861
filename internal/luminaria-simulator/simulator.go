package luminaria_simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/lumicert/pkg/dedup"
)

// Publisher sends a frame to the broker.
type Publisher interface {
	PublishJSON(v any) error
}

// Command changes the controller mode or forces one relay, optionally for a limited time.
type Command struct {
	Modo      string `json:"modo,omitempty"` // AUTO | MANUAL
	ID        int    `json:"id,omitempty"`
	Relay     *bool  `json:"relay,omitempty"`
	DuracionS int    `json:"duracion_s,omitempty"`
}

type stopper interface{ Stop() bool }

// revert is a pending timed relay command. on/pinned hold the relay state from
// before the first of a run of overlapping timed commands.
type revert struct {
	timer  stopper
	on     bool
	pinned bool
}

type Simulator struct {
	mu        sync.Mutex
	generator *Generator
	publisher Publisher
	deduper   *dedup.Deduper
	logger    *log.Logger
	timers    map[int]*revert // pending relay reverts
	afterFunc func(time.Duration, func()) stopper
	now       func() time.Time
}

func NewSimulator(gen *Generator, pub Publisher, logger *log.Logger) *Simulator {
	if logger == nil {
		logger = log.Default()
	}
	return &Simulator{
		generator: gen,
		publisher: pub,
		deduper:   dedup.New(2*time.Minute, 10000),
		logger:    logger,
		timers:    map[int]*revert{},
		afterFunc: func(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) },
		now:       time.Now,
	}
}

// Run publishes a frame immediately and then every interval until ctx is done.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.PublishOnce()
	for {
		select {
		case <-ctx.Done():
			s.stopTimers()
			return
		case <-ticker.C:
			s.PublishOnce()
		}
	}
}

// PublishOnce generates and publishes one frame.
func (s *Simulator) PublishOnce() {
	f := s.generator.Next(s.now())
	if err := s.publisher.PublishJSON(f); err != nil {
		s.logger.Printf("publish error: %v", err)
		return
	}
	var flags []string
	for _, l := range f.Luminarias {
		switch {
		case l.FailLowCurrent:
			flags = append(flags, fmt.Sprintf("L%d:FALLA", l.ID))
		case l.Overcurrent:
			flags = append(flags, fmt.Sprintf("L%d:SOBRE", l.ID))
		case l.Theft:
			flags = append(flags, fmt.Sprintf("L%d:ROBO", l.ID))
		}
		if fails, overs, day := s.generator.Streaks(l.ID); fails >= 3 || overs >= 3 || day >= 3 {
			s.logger.Printf("L%d: consecutive events fail=%d over=%d day=%d", l.ID, fails, overs, day)
		}
	}
	s.logger.Printf("frame lux=%.1f modo=%s %s", f.Lux, f.Modo, strings.Join(flags, " "))
}

// HandleCommand applies a command received on the command topic.
// Redelivered payloads are ignored.
func (s *Simulator) HandleCommand(_ string, payload []byte) error {
	if !s.deduper.ShouldProcess(dedup.Key(payload)) {
		return nil
	}
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	return s.Apply(cmd)
}

func (s *Simulator) Apply(cmd Command) error {
	switch strings.ToUpper(strings.TrimSpace(cmd.Modo)) {
	case "":
	case ModoAuto:
		s.generator.SetAuto(true)
	case ModoManual:
		s.generator.SetAuto(false)
	default:
		return fmt.Errorf("unknown modo %q", cmd.Modo)
	}
	if cmd.Relay == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prevOn, prevPinned, ok := s.generator.SetRelay(cmd.ID, *cmd.Relay, true)
	if !ok {
		return fmt.Errorf("unknown luminaria %d", cmd.ID)
	}
	if p, ok := s.timers[cmd.ID]; ok {
		p.timer.Stop()
		delete(s.timers, cmd.ID)
		// still forced by the earlier command: revert to what it found
		prevOn, prevPinned = p.on, p.pinned
	}
	s.logger.Printf("L%d relay -> %v for %ds", cmd.ID, *cmd.Relay, cmd.DuracionS)

	if cmd.DuracionS > 0 {
		id := cmd.ID
		p := &revert{on: prevOn, pinned: prevPinned}
		p.timer = s.afterFunc(time.Duration(cmd.DuracionS)*time.Second, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.timers[id] != p {
				return // superseded by a later command
			}
			delete(s.timers, id)
			s.generator.SetRelay(id, p.on, p.pinned)
			s.logger.Printf("L%d relay reverted to %v", id, p.on)
		})
		s.timers[id] = p
	}
	return nil
}

func (s *Simulator) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.timers {
		p.timer.Stop()
		delete(s.timers, id)
	}
}
