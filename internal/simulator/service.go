package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Tradeoff/internal/config"
	"github.com/MikeSquared-Agency/Tradeoff/internal/hermes"
	"github.com/MikeSquared-Agency/Tradeoff/internal/metrics"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
	"github.com/MikeSquared-Agency/Tradeoff/internal/optimize"
	"github.com/MikeSquared-Agency/Tradeoff/internal/scoring"
	"github.com/MikeSquared-Agency/Tradeoff/internal/store"
)

var (
	ErrCaseNotFound = errors.New("case not found")
	ErrStore        = errors.New("store failure")
)

// Service keeps simulations in a store and runs the case steps on request.
// Steps on the same case are serialized.
type Service struct {
	store   store.Store
	hermes  hermes.Client
	metrics *metrics.Metrics
	cfg     *config.Config
	logger  *slog.Logger

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex

	evaluations   atomic.Int64
	optimizations atomic.Int64

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a service. h may be nil when events are disabled.
func New(s store.Store, h hermes.Client, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		store:   s,
		hermes:  h,
		metrics: m,
		cfg:     cfg,
		logger:  logger,
		locks:   make(map[uuid.UUID]*sync.Mutex),
		stopCh:  make(chan struct{}),
	}
}

// Start publishes periodic stats while events are enabled.
func (s *Service) Start(ctx context.Context) {
	if s.hermes == nil || s.cfg.StatsInterval() <= 0 {
		return
	}
	s.wg.Add(1)
	go s.statsLoop(ctx)
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Service) statsLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.StatsInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishStats(ctx)
		}
	}
}

func (s *Service) publishStats(ctx context.Context) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		s.logger.Error("failed to get case stats", "error", err)
		return
	}
	_ = s.hermes.Publish(hermes.SubjectStats, hermes.StatsEvent{
		Cases:         stats.Total,
		Evaluations:   int(s.evaluations.Load()),
		Optimizations: int(s.optimizations.Load()),
		Timestamp:     time.Now().UTC(),
	})
}

func (s *Service) lock(id uuid.UUID) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.locksMu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*store.CaseRecord, *Simulation, error) {
	rec, err := s.store.GetCase(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if rec == nil {
		return nil, nil, fmt.Errorf("case %s: %w", id, ErrCaseNotFound)
	}
	sim, err := Resume(rec.Case, rec.Status, s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("resume case %s: %w", id, err)
	}
	return rec, sim, nil
}

func (s *Service) save(ctx context.Context, rec *store.CaseRecord, sim *Simulation) error {
	rec.Case = sim.Case()
	rec.Status = sim.Status()
	rec.Results = sim.Results()
	if err := s.store.UpdateCase(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

// publish sends a case lifecycle event. Failures are logged only; the
// stored case event is the source of truth.
func (s *Service) publish(subject string, data interface{}) {
	if err := s.hermes.Publish(subject, data); err != nil {
		caseID, event, _ := hermes.ParseCaseSubject(subject)
		s.logger.Warn("failed to publish case event", "case_id", caseID, "event", event, "error", err)
	}
}

func (s *Service) event(ctx context.Context, id uuid.UUID, name string, payload map[string]interface{}) {
	if err := s.store.CreateCaseEvent(ctx, &store.CaseEvent{CaseID: id, Event: name, Payload: payload}); err != nil {
		s.logger.Warn("failed to record case event", "case_id", id, "event", name, "error", err)
	}
}

func (s *Service) fail(ctx context.Context, id uuid.UUID, operation string, err error) error {
	s.metrics.Errors.WithLabelValues(operation).Inc()
	s.logger.Warn("case operation failed", "case_id", id, "operation", operation, "error", err)
	if errors.Is(err, ErrCaseNotFound) {
		return err
	}
	s.event(ctx, id, "failed", map[string]interface{}{"operation": operation, "error": err.Error()})
	if s.hermes != nil {
		s.publish(hermes.SubjectCaseFailed(id.String()), hermes.CaseFailedEvent{
			CaseID:    id.String(),
			Operation: operation,
			Error:     err.Error(),
		})
	}
	return err
}

// Create builds a case and stores it.
func (s *Service) Create(ctx context.Context, c *model.Case) (*store.CaseRecord, error) {
	sim := NewSimulation(c, s.logger)
	if err := sim.Build(); err != nil {
		s.metrics.Errors.WithLabelValues("build").Inc()
		return nil, err
	}

	rec := &store.CaseRecord{Name: c.Name, Status: sim.Status(), Case: sim.Case()}
	if err := s.store.CreateCase(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	s.metrics.CasesCreated.Inc()

	levels := sim.Plan().Levels()
	maxLevel := 0
	if len(levels) > 0 {
		maxLevel = levels[len(levels)-1]
	}
	s.event(ctx, rec.ID, "created", map[string]interface{}{"statements": len(levels), "max_level": maxLevel})
	if s.hermes != nil {
		s.publish(hermes.SubjectCaseCreated(rec.ID.String()), hermes.CaseCreatedEvent{
			CaseID:     rec.ID.String(),
			Name:       rec.Name,
			Statements: len(levels),
			MaxLevel:   maxLevel,
		})
	}
	s.logger.Info("case created", "case_id", rec.ID, "name", rec.Name)
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*store.CaseRecord, error) {
	rec, err := s.store.GetCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("case %s: %w", id, ErrCaseNotFound)
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, filter store.CaseFilter) ([]*store.CaseRecord, error) {
	recs, err := s.store.ListCases(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return recs, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteCase(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	s.locksMu.Lock()
	delete(s.locks, id)
	s.locksMu.Unlock()

	s.metrics.CasesDeleted.Inc()
	if s.hermes != nil {
		s.publish(hermes.SubjectCaseDeleted(id.String()), map[string]string{"case_id": id.String()})
	}
	return nil
}

// Evaluate evaluates and appreciates a stored case.
func (s *Service) Evaluate(ctx context.Context, id uuid.UUID) (*store.CaseRecord, []scoring.Warning, error) {
	unlock := s.lock(id)
	defer unlock()

	start := time.Now()
	rec, sim, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, s.fail(ctx, id, "evaluate", err)
	}
	if err := sim.Evaluate(); err != nil {
		return nil, nil, s.fail(ctx, id, "evaluate", err)
	}
	warnings, err := sim.Appreciate()
	if err != nil {
		return nil, warnings, s.fail(ctx, id, "appreciate", err)
	}
	if err := s.save(ctx, rec, sim); err != nil {
		return nil, warnings, err
	}

	s.evaluations.Add(1)
	s.metrics.Evaluations.Inc()
	s.metrics.EvaluationTime.Observe(time.Since(start).Seconds())

	highest := make(map[string]string, len(rec.Results))
	for name, sr := range rec.Results {
		highest[name] = sr.HighestWeightedOption
	}
	messages := make([]string, len(warnings))
	for i, w := range warnings {
		messages[i] = w.String()
	}
	s.event(ctx, id, "evaluated", map[string]interface{}{"highest_weighted_options": highest})
	if s.hermes != nil {
		s.publish(hermes.SubjectCaseEvaluated(id.String()), hermes.CaseEvaluatedEvent{
			CaseID:    id.String(),
			Scenarios: len(rec.Case.Scenarios),
			Options:   len(rec.Case.Options),
			Highest:   highest,
			Warnings:  messages,
		})
	}
	return rec, warnings, nil
}

// ModifyWeight changes one user weight. A case that was appreciated is
// appreciated again with the new weight.
func (s *Service) ModifyWeight(ctx context.Context, id uuid.UUID, field, element string, value float64) (*store.CaseRecord, error) {
	unlock := s.lock(id)
	defer unlock()

	rec, sim, err := s.load(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, id, "modify", err)
	}
	wasAppreciated := sim.at(store.StatusAppreciated)
	old, err := sim.Modify(field, element, value)
	if err != nil {
		return nil, s.fail(ctx, id, "modify", err)
	}
	if wasAppreciated {
		if _, err := sim.Appreciate(); err != nil {
			return nil, s.fail(ctx, id, "appreciate", err)
		}
	}
	if err := s.save(ctx, rec, sim); err != nil {
		return nil, err
	}

	s.metrics.WeightsModified.WithLabelValues(field).Inc()
	s.event(ctx, id, "modified", map[string]interface{}{"field": field, "element": element, "old": old, "new": value})
	if s.hermes != nil {
		s.publish(hermes.SubjectCaseModified(id.String()), hermes.WeightModifiedEvent{
			CaseID:   id.String(),
			Field:    field,
			Element:  element,
			OldValue: old,
			NewValue: value,
		})
	}
	return rec, nil
}

// Optimize runs the optimizer on an appreciated case and stores the case
// with its new option.
func (s *Service) Optimize(ctx context.Context, id uuid.UUID, req optimize.Request) (*store.CaseRecord, *optimize.Outcome, error) {
	unlock := s.lock(id)
	defer unlock()

	if req.MaxCombinations <= 0 {
		req.MaxCombinations = s.cfg.Optimizer.MaxCombinations
	}
	if d := s.cfg.OptimizeTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	rec, sim, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, s.fail(ctx, id, "optimize", err)
	}
	outcome, err := sim.Optimize(ctx, req)
	if err != nil {
		return nil, nil, s.fail(ctx, id, "optimize", err)
	}
	if err := s.save(ctx, rec, sim); err != nil {
		return nil, nil, err
	}

	s.optimizations.Add(1)
	s.metrics.Optimizations.WithLabelValues(strconv.FormatBool(outcome.Improved)).Inc()
	s.metrics.OptimizeTrials.Observe(float64(outcome.Trials))
	s.metrics.OptimizeGain.Observe(outcome.Gain)
	s.metrics.OptimizeTime.Observe(outcome.Duration.Seconds())

	s.event(ctx, id, "optimized", map[string]interface{}{
		"scenario":    outcome.Scenario,
		"base_option": outcome.BaseOption,
		"option":      outcome.Option,
		"gain":        outcome.Gain,
		"trials":      outcome.Trials,
	})
	if s.hermes != nil {
		s.publish(hermes.SubjectCaseOptimized(id.String()), hermes.CaseOptimizedEvent{
			CaseID:           id.String(),
			Scenario:         outcome.Scenario,
			BaseOption:       outcome.BaseOption,
			BaseAppreciation: outcome.BaseAppreciation,
			Option:           outcome.Option,
			Values:           outcome.Values,
			Appreciation:     outcome.Appreciation,
			Gain:             outcome.Gain,
			Trials:           outcome.Trials,
		})
	}
	return rec, outcome, nil
}

// Frontier returns the Pareto optimal options of a scenario.
func (s *Service) Frontier(ctx context.Context, id uuid.UUID, scenario string) ([]scoring.ParetoCandidate, error) {
	unlock := s.lock(id)
	defer unlock()

	_, sim, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sim.Frontier(scenario)
}

// Ranking orders a case's options by scenario weighted appreciation.
func (s *Service) Ranking(ctx context.Context, id uuid.UUID) ([]scoring.RankedOption, error) {
	unlock := s.lock(id)
	defer unlock()

	_, sim, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sim.Ranking()
}

func (s *Service) Events(ctx context.Context, id uuid.UUID) ([]*store.CaseEvent, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.store.GetCaseEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return events, nil
}

func (s *Service) Stats(ctx context.Context) (*store.CaseStats, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return stats, nil
}

// SetupSubscriptions registers the NATS optimize request handler.
func (s *Service) SetupSubscriptions() {
	if s.hermes == nil {
		return
	}

	_ = s.hermes.Subscribe(hermes.SubjectOptimizeRequest, func(_ string, data []byte) {
		s.handleOptimizeRequest(context.Background(), data)
	})
}

func (s *Service) handleOptimizeRequest(ctx context.Context, data []byte) {
	var req hermes.OptimizeRequestEvent
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Warn("invalid optimize request event", "error", err)
		return
	}
	id, err := uuid.Parse(req.CaseID)
	if err != nil {
		s.logger.Warn("optimize request with invalid case id", "case_id", req.CaseID)
		return
	}
	_, outcome, err := s.Optimize(ctx, id, optimize.Request{
		Scenario:        req.Scenario,
		OptionName:      req.OptionName,
		MaxCombinations: req.MaxCombinations,
	})
	if err != nil {
		s.logger.Error("optimize request failed", "case_id", id, "error", err)
		return
	}
	s.logger.Info("optimize request handled", "case_id", id, "option", outcome.Option, "gain", outcome.Gain)
}
