package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkarpov/runcatch/internal/capture"
	"github.com/dkarpov/runcatch/internal/recording"
	"github.com/dkarpov/runcatch/internal/vision"
)

const (
	DefaultScoreThreshold = 45
	DefaultRemoteInterval = 4000 * time.Millisecond
	DefaultLocalInterval  = 1000 * time.Millisecond
	DefaultQuotaBackoff   = 10000 * time.Millisecond
)

type Config struct {
	// ScoreThreshold is the minimum known score worth keeping.
	ScoreThreshold int
	RemoteInterval time.Duration
	LocalInterval  time.Duration
	QuotaBackoff   time.Duration
	// Visible reports whether anyone is watching the session. When it
	// returns false the tick delay is doubled rather than suspended,
	// keeping the session alive without burning resources. Nil means
	// always visible.
	Visible func() bool
	// Notify receives one-way events. Must not call back into the
	// controller.
	Notify func(Event)
}

// Controller drives one detection session: on each tick it samples a
// frame, classifies it, applies the state transition, and schedules
// the next tick. At most one tick's classify-and-transition sequence
// is in flight at any time.
type Controller struct {
	cfg      Config
	local    vision.Classifier
	remote   vision.Classifier
	recorder *recording.Recorder
	history  HistorySink

	mu          sync.Mutex
	state       State
	mode        Mode
	gen         int
	cancel      context.CancelFunc
	sched       *scheduler
	rateLimited bool
	lastFrame   *capture.Frame
}

func NewController(local, remote vision.Classifier, recorder *recording.Recorder, history HistorySink, cfg Config) *Controller {
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = DefaultScoreThreshold
	}
	if cfg.RemoteInterval <= 0 {
		cfg.RemoteInterval = DefaultRemoteInterval
	}
	if cfg.LocalInterval <= 0 {
		cfg.LocalInterval = DefaultLocalInterval
	}
	if cfg.QuotaBackoff <= 0 {
		cfg.QuotaBackoff = DefaultQuotaBackoff
	}
	return &Controller{
		cfg:      cfg,
		local:    local,
		remote:   remote,
		recorder: recorder,
		history:  history,
		state:    StateIdle,
	}
}

// Start attaches a live video source and begins monitoring. Fails if a
// session is already active, the source has already ended, or the
// requested mode has no classifier configured.
func (c *Controller) Start(src capture.VideoSource, mode Mode) error {
	if src == nil {
		return fmt.Errorf("no video source")
	}
	select {
	case <-src.Done():
		return fmt.Errorf("video source already ended")
	default:
	}

	classifier := c.local
	if mode == ModeRemote {
		classifier = c.remote
	}
	if classifier == nil {
		return fmt.Errorf("no %s classifier configured", mode)
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("session already active")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.sched = newScheduler()
	c.mode = mode
	c.state = StateMonitoring
	sched := c.sched
	c.mu.Unlock()

	log.Printf("[SESSION] started in %s mode", mode)
	c.emit(Event{Type: EventStateChanged, State: StateMonitoring.String()})

	go func() {
		select {
		case <-src.Done():
			log.Printf("[SESSION] video source ended")
			c.stopGen(gen)
		case <-ctx.Done():
		}
	}()

	sched.schedule(0, func() { c.tick(ctx, src, classifier, gen) })
	return nil
}

// Stop ends the session immediately. Any open recording is discarded
// without emitting a record; a classification call already in flight
// is allowed to finish but its result is thrown away.
func (c *Controller) Stop() {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	c.stopGen(gen)
}

func (c *Controller) stopGen(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.sched != nil {
		c.sched.stop()
		c.sched = nil
	}
	c.recorder.Abort()
	c.state = StateIdle
	c.rateLimited = false
	c.lastFrame = nil
	c.mu.Unlock()

	log.Printf("[SESSION] stopped")
	c.emit(Event{Type: EventStateChanged, State: StateIdle.String()})
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) RateLimited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimited
}

func (c *Controller) Active() bool {
	return c.State() != StateIdle
}

// tick runs one sample-classify-transition cycle and schedules the
// next one. The next tick is armed only after this one's result has
// been fully applied, so transitions happen strictly in tick order.
func (c *Controller) tick(ctx context.Context, src capture.VideoSource, classifier vision.Classifier, gen int) {
	frame, result, err := classify(ctx, src, classifier)

	c.mu.Lock()
	// Stale-result guard: the session may have been stopped (or
	// restarted) while classification was in flight.
	if gen != c.gen || c.state == StateIdle || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	if frame != nil {
		c.lastFrame = frame
	}
	delay, events := c.applyLocked(result, err)
	sched := c.sched
	c.mu.Unlock()

	c.emit(events...)
	sched.schedule(delay, func() { c.tick(ctx, src, classifier, gen) })
}

func classify(ctx context.Context, src capture.VideoSource, classifier vision.Classifier) (*capture.Frame, *vision.Classification, error) {
	img, err := src.Frame(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("sampling frame: %w", err)
	}
	frame := capture.Sample(img)
	result, err := classifier.ClassifyFrame(ctx, frame)
	if err != nil {
		return frame, nil, err
	}
	return frame, result, nil
}

// applyLocked turns one tick's outcome into a state transition and
// picks the delay before the next tick. Classification failures never
// change state; they are treated as no new information this tick.
func (c *Controller) applyLocked(result *vision.Classification, err error) (time.Duration, []Event) {
	if err != nil {
		if c.mode == ModeRemote && errors.Is(err, vision.ErrRateLimited) {
			var events []Event
			if !c.rateLimited {
				c.rateLimited = true
				events = append(events, Event{Type: EventRateLimited, RateLimited: true})
			}
			log.Printf("[SESSION] classifier rate limited, backing off %v", c.cfg.QuotaBackoff)
			return c.cfg.QuotaBackoff, events
		}
		log.Printf("[SESSION] classification failed: %v", err)
		return c.delayLocked(), nil
	}

	var events []Event
	if c.rateLimited {
		c.rateLimited = false
		events = append(events, Event{Type: EventRateLimited, RateLimited: false})
	}

	switch c.state {
	case StateMonitoring:
		if result.IsGameOver {
			// Monitoring began on an already-finished screen.
			c.state = StateWaitingForStart
		} else {
			c.recorder.Open()
			c.state = StateRecording
		}
		events = append(events, Event{Type: EventStateChanged, State: c.state.String()})

	case StateRecording:
		if result.IsGameOver {
			events = append(events, c.finalizeLocked(result)...)
		}

	case StateWaitingForStart:
		if !result.IsGameOver {
			c.recorder.Open()
			c.state = StateRecording
			events = append(events, Event{Type: EventStateChanged, State: c.state.String()})
		}
	}

	return c.delayLocked(), events
}

// finalizeLocked closes the recording, applies the retention rule and
// emits exactly one attempt record. It runs inside the current tick
// while the scheduler is quiet, so no tick can interleave and
// double-finalize the same attempt.
func (c *Controller) finalizeLocked(result *vision.Classification) []Event {
	events := []Event{
		{Type: EventStateChanged, State: StateAnalyzing.String()},
	}
	c.state = StateAnalyzing

	media := c.recorder.Close()

	var thumbnail []byte
	if c.lastFrame != nil {
		if data, err := c.lastFrame.EncodePNG(); err == nil {
			thumbnail = data
		}
	}

	attempt := Attempt{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Score:     result.Score,
		Thumbnail: thumbnail,
	}
	switch {
	case result.Score == nil:
		attempt.Status = StatusManualReview
		attempt.Media = media
	case *result.Score >= c.cfg.ScoreThreshold:
		attempt.Status = StatusSaved
		attempt.Media = media
	default:
		attempt.Status = StatusDiscarded
	}

	c.history.Append(attempt)

	if result.Score != nil {
		log.Printf("[SESSION] attempt %s finalized: score=%d status=%s", attempt.ID, *result.Score, attempt.Status)
	} else {
		log.Printf("[SESSION] attempt %s finalized: score=unknown status=%s", attempt.ID, attempt.Status)
	}

	events = append(events, Event{Type: EventAttempt, Attempt: &attempt, AttemptID: attempt.ID})

	c.state = StateWaitingForStart
	events = append(events, Event{Type: EventStateChanged, State: c.state.String()})
	return events
}

func (c *Controller) delayLocked() time.Duration {
	delay := c.cfg.RemoteInterval
	if c.mode == ModeLocal {
		delay = c.cfg.LocalInterval
	}
	if c.cfg.Visible != nil && !c.cfg.Visible() {
		delay *= 2
	}
	return delay
}

func (c *Controller) emit(events ...Event) {
	if c.cfg.Notify == nil {
		return
	}
	for _, ev := range events {
		c.cfg.Notify(ev)
	}
}
