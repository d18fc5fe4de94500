package flow

import (
	"sync"
	"time"

	"jamestronic/models"
)

// DropOffConfig tunes the drop-off detector.
type DropOffConfig struct {
	// Lookback bounds the per-session visit log; older visits are discarded.
	Lookback int
	// ExitRiskPaths lists pages whose repeat visits signal a bounce attempt,
	// such as the cancellation or price-review screen.
	ExitRiskPaths []string
}

// DefaultDropOffConfig returns the production detector tuning.
func DefaultDropOffConfig() DropOffConfig {
	return DropOffConfig{
		Lookback:      10,
		ExitRiskPaths: []string{"/booking/cancel", "/booking/price-review"},
	}
}

// pageVisit is one navigation observation within a session.
type pageVisit struct {
	Path              string
	State             models.BookingState
	ConfidenceAtVisit float64
	Timestamp         time.Time
}

type sessionState struct {
	initialState models.BookingState
	visits       []pageVisit
}

// DropOffDetector watches raw navigation telemetry per session and flags
// bounce and hesitation patterns. It is independent of the booking state
// machine and holds no reference to any BookingContext; correlating a
// detection back to a booking is the engine's job.
type DropOffDetector struct {
	cfg      DropOffConfig
	mu       sync.Mutex
	sessions map[string]*sessionState
}

// NewDropOffDetector builds a detector with the given tuning. A zero
// Lookback falls back to the default.
func NewDropOffDetector(cfg DropOffConfig) *DropOffDetector {
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultDropOffConfig().Lookback
	}
	return &DropOffDetector{
		cfg:      cfg,
		sessions: make(map[string]*sessionState),
	}
}

// StartSession creates an empty visit log for the session. Restarting an
// existing session resets its log.
func (d *DropOffDetector) StartSession(sessionID string, initialState models.BookingState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[sessionID] = &sessionState{initialState: initialState}
}

// RecordPageVisit appends a visit to the session's bounded log.
func (d *DropOffDetector) RecordPageVisit(sessionID, path string, state models.BookingState, confidence float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	sess, ok := d.sessions[sessionID]
	if !ok {
		return newNotFoundError("session", sessionID)
	}
	sess.visits = append(sess.visits, pageVisit{
		Path:              path,
		State:             state,
		ConfidenceAtVisit: confidence,
		Timestamp:         time.Now(),
	})
	if len(sess.visits) > d.cfg.Lookback {
		sess.visits = sess.visits[len(sess.visits)-d.cfg.Lookback:]
	}
	return nil
}

// CheckDropOff classifies the session's recent visits. Each rule family has
// the same shape: count of matching visits → classification → risk level.
func (d *DropOffDetector) CheckDropOff(sessionID string) (models.DropOffResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sess, ok := d.sessions[sessionID]
	if !ok {
		return models.DropOffResult{}, newNotFoundError("session", sessionID)
	}

	if result, ok := d.detectConfidenceSlide(sess); ok {
		return result, nil
	}
	if result, ok := d.detectBounceAttempt(sess); ok {
		return result, nil
	}
	return models.DropOffResult{Detected: false}, nil
}

// detectBounceAttempt fires when the last three visits target the same
// exit-risk path while the session remains in a non-terminal state.
func (d *DropOffDetector) detectBounceAttempt(sess *sessionState) (models.DropOffResult, bool) {
	last := lastVisits(sess.visits, 3)
	if len(last) < 3 {
		return models.DropOffResult{}, false
	}
	path := last[len(last)-1].Path
	if !d.isExitRiskPath(path) {
		return models.DropOffResult{}, false
	}
	for _, v := range last {
		if v.Path != path || v.State.IsTerminal() {
			return models.DropOffResult{}, false
		}
	}
	return models.DropOffResult{
		Detected:  true,
		Type:      models.DropOffBounceAttempt,
		RiskLevel: models.RiskMedium,
	}, true
}

// detectConfidenceSlide fires on three strictly decreasing confidence
// readings across the most recent visits; a sustained slide outranks a
// bounce, so it is checked first and classified high.
func (d *DropOffDetector) detectConfidenceSlide(sess *sessionState) (models.DropOffResult, bool) {
	last := lastVisits(sess.visits, 3)
	if len(last) < 3 {
		return models.DropOffResult{}, false
	}
	for i := 1; i < len(last); i++ {
		if last[i].State.IsTerminal() || last[i].ConfidenceAtVisit >= last[i-1].ConfidenceAtVisit {
			return models.DropOffResult{}, false
		}
	}
	return models.DropOffResult{
		Detected:  true,
		Type:      models.DropOffConfidenceSlide,
		RiskLevel: models.RiskHigh,
	}, true
}

func (d *DropOffDetector) isExitRiskPath(path string) bool {
	for _, p := range d.cfg.ExitRiskPaths {
		if p == path {
			return true
		}
	}
	return false
}

func lastVisits(visits []pageVisit, n int) []pageVisit {
	if len(visits) < n {
		return nil
	}
	return visits[len(visits)-n:]
}
