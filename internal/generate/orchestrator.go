// Package generate implements the book generation pipeline: language
// detection, structure planning, content generation and session tracking.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/bookforge/internal/book"
	"github.com/dgallion1/bookforge/internal/config"
	"github.com/dgallion1/bookforge/internal/llm"
)

// ErrSessionActive is returned when a generation request arrives while a
// session is still running. Sessions never merge; the caller must wait.
var ErrSessionActive = fmt.Errorf("a generation session is already running")

// Orchestrator owns the session store and runs one pipeline per accepted
// request in a background goroutine.
type Orchestrator struct {
	sessions  *SessionStore
	detector  *Detector
	planner   *Planner
	generator *Generator
	log       *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Serializes the active-session check in StartSession.
	startMu sync.Mutex
}

func NewOrchestrator(cfg config.Config, client llm.Client, log *slog.Logger) *Orchestrator {
	planPolicy := NewPolicy(cfg.PlanRetries)
	contentPolicy := NewPolicy(cfg.ContentRetries)
	return &Orchestrator{
		sessions:  NewSessionStore(cfg.SessionTTL),
		detector:  NewDetector(client, planPolicy, cfg.DefaultLanguage, log),
		planner:   NewPlanner(client, planPolicy, cfg.PlanRetries, log),
		generator: NewGenerator(client, contentPolicy, cfg.CallTimeout, log),
		log:       log,
	}
}

// Start launches the session cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.baseCtx = workerCtx
	o.cancel = cancel

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.sessions.Cleanup()
			}
		}
	}()
}

// Stop cancels running sessions and waits for them to exit.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// StartSession validates the request and begins a generation session.
// Only one session runs at a time.
func (o *Orchestrator) StartSession(req book.Request) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	o.startMu.Lock()
	if active := o.sessions.Active(); active != nil {
		o.startMu.Unlock()
		return nil, ErrSessionActive
	}
	sess := NewSession(req)
	o.sessions.Put(sess)
	o.startMu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(o.baseCtx, sess)
	}()
	return sess, nil
}

// GetSession returns a session by ID.
func (o *Orchestrator) GetSession(id string) *Session {
	return o.sessions.Get(id)
}

// run executes the full pipeline for one session.
func (o *Orchestrator) run(ctx context.Context, sess *Session) {
	log := o.log.With("session_id", sess.ID, "title", sess.Request.Title)

	sess.Report(Event{
		Phase:   PhaseDetectingLanguage,
		Message: "Detecting language",
	})
	language := o.detector.Detect(ctx, sess.Request.Description)
	sess.SetLanguage(language)
	log.Info("language detected", "language", language)

	sess.Report(Event{
		Phase:   PhasePlanningStructure,
		Message: "Planning book structure",
	})
	plan, err := o.planner.Plan(ctx, sess.Request, language)
	if err != nil {
		o.fail(sess, log, "structure planning failed", err)
		return
	}
	log.Info("structure planned", "chapters", len(plan.Chapters), "subsections", plan.TotalSubsections())

	model, err := o.generator.Generate(ctx, plan, sess.Request, language, sess)
	sess.SetModel(model)
	if err != nil {
		o.fail(sess, log, "content generation aborted", err)
		return
	}

	switch model.Status {
	case book.StatusComplete:
		sess.SetState(StateCompleted, "")
	default:
		sess.SetState(StatePartial, "")
	}
	sess.Report(Event{
		Phase:    PhaseReady,
		Message:  "Book is ready",
		Fraction: 1,
	})
	log.Info("session finished", "status", string(model.Status))
}

func (o *Orchestrator) fail(sess *Session, log *slog.Logger, phase string, err error) {
	msg := fmt.Sprintf("%s: %s", phase, err)
	sess.SetState(StateFailed, msg)
	sess.Report(Event{
		Phase:   PhaseFailed,
		Message: msg,
	})
	log.Error(phase, "error", err)
}
