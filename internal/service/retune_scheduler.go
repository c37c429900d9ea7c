package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"tone-drift/internal/domain"
)

// RetuneState es el estado del flujo de retune de una marca dentro de un barrido.
type RetuneState string

const (
	StateIdle                 RetuneState = "idle"
	StateScanningBrands       RetuneState = "scanning_brands"
	StateNoDrift              RetuneState = "no_drift"
	StateDriftFound           RetuneState = "drift_found"
	StateRequestingCorrection RetuneState = "requesting_correction"
	StateNotifying            RetuneState = "notifying"
)

// ErrSweepInProgress: un tick llego mientras el barrido anterior seguia corriendo.
var ErrSweepInProgress = errors.New("retune sweep already in progress")

type brandSource interface {
	ListBrandIDs(ctx context.Context) ([]string, error)
	GetByBrand(ctx context.Context, brandID string) (domain.ToneSignature, error)
}

type driftFinder interface {
	FindDrifted(ctx context.Context, brandID string) ([]domain.Evaluation, error)
}

type correctionSuggester interface {
	SuggestSignatureCorrection(ctx context.Context, sig domain.ToneSignature, drifted []domain.Evaluation) (domain.ToneTraits, error)
}

// proposalIssuer separa firma y registro: la propuesta solo se registra si la alerta salio.
type proposalIssuer interface {
	DraftProposal(sig domain.ToneSignature, traits domain.ToneTraits, drifted int) (domain.CorrectionProposal, error)
	StoreProposal(ctx context.Context, proposal domain.CorrectionProposal) error
}

// SweepReport resume un barrido completo.
type SweepReport struct {
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	Brands    int               `json:"brands"`
	Drifted   []string          `json:"drifted"`
	Proposed  []string          `json:"proposed"`
	Skipped   []string          `json:"skipped"`
	Failed    map[string]string `json:"failed"`
}

type RetuneSchedulerOptions struct {
	Schedule        string
	Workers         int
	NotifierTimeout time.Duration
}

// RetuneScheduler barre todas las marcas en cada tick y propone correcciones ante drift.
// Nunca corren dos barridos a la vez y cada marca procesa como mucho un flujo de correccion.
type RetuneScheduler struct {
	brands    brandSource
	detector  driftFinder
	suggester correctionSuggester
	issuer    proposalIssuer
	notifier  ApprovalNotifier
	logger    *zap.Logger

	schedule        string
	workers         int
	notifierTimeout time.Duration

	inFlight   *semaphore.Weighted
	brandLocks sync.Map // brandID -> *sync.Mutex
	cron       *cron.Cron

	mu         sync.Mutex
	state      RetuneState
	lastReport *SweepReport
}

func NewRetuneScheduler(
	brands brandSource,
	detector driftFinder,
	suggester correctionSuggester,
	issuer proposalIssuer,
	notifier ApprovalNotifier,
	opts RetuneSchedulerOptions,
	logger *zap.Logger,
) *RetuneScheduler {
	if opts.Schedule == "" {
		opts.Schedule = "@every 60m"
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.NotifierTimeout <= 0 {
		opts.NotifierTimeout = 30 * time.Second
	}
	return &RetuneScheduler{
		brands:          brands,
		detector:        detector,
		suggester:       suggester,
		issuer:          issuer,
		notifier:        notifier,
		logger:          logger,
		schedule:        opts.Schedule,
		workers:         opts.Workers,
		notifierTimeout: opts.NotifierTimeout,
		inFlight:        semaphore.NewWeighted(1),
		state:           StateIdle,
	}
}

// Start registra el tick en cron y arranca el reloj. Stop lo detiene y espera al barrido en curso.
func (s *RetuneScheduler) Start(ctx context.Context) error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(s.schedule, func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("invalid retune schedule %q: %w", s.schedule, err)
	}
	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	s.logger.Info("retune scheduler started", zap.String("schedule", s.schedule), zap.Int("workers", s.workers))
	return nil
}

func (s *RetuneScheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("retune scheduler stopped")
}

// Tick es el evento periodico: corre un barrido o lo descarta si ya hay uno en curso.
func (s *RetuneScheduler) Tick(ctx context.Context) {
	report, err := s.Sweep(ctx)
	if err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			s.logger.Warn("retune tick skipped, previous sweep still running")
			return
		}
		s.logger.Error("retune sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("retune sweep finished",
		zap.Int("brands", report.Brands),
		zap.Int("drifted", len(report.Drifted)),
		zap.Int("proposed", len(report.Proposed)),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("duration", report.Duration),
	)
}

// Sweep procesa todas las marcas una vez. Solo falla si no puede enumerarlas;
// los errores de una marca quedan en el reporte y no afectan a las demas.
func (s *RetuneScheduler) Sweep(ctx context.Context) (SweepReport, error) {
	if !s.inFlight.TryAcquire(1) {
		return SweepReport{}, ErrSweepInProgress
	}
	defer s.inFlight.Release(1)

	s.setState(StateScanningBrands)
	defer s.setState(StateIdle)

	report := SweepReport{StartedAt: time.Now().UTC(), Failed: map[string]string{}}

	brandIDs, err := s.brands.ListBrandIDs(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf("list brands: %w", err)
	}
	report.Brands = len(brandIDs)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for _, brandID := range brandIDs {
		brandID := brandID
		g.Go(func() error {
			outcome, err := s.processBrand(ctx, brandID)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case StateDriftFound, StateRequestingCorrection, StateNotifying:
				report.Drifted = append(report.Drifted, brandID)
			}
			switch {
			case err != nil:
				report.Failed[brandID] = err.Error()
			case outcome == StateNotifying:
				report.Proposed = append(report.Proposed, brandID)
			case outcome == StateIdle:
				report.Skipped = append(report.Skipped, brandID)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Drifted)
	sort.Strings(report.Proposed)
	sort.Strings(report.Skipped)
	report.Duration = time.Since(report.StartedAt)

	s.mu.Lock()
	s.lastReport = &report
	s.mu.Unlock()
	return report, nil
}

// processBrand devuelve el ultimo estado alcanzado por la marca.
// StateIdle indica que otra correccion de la misma marca ya estaba en curso.
func (s *RetuneScheduler) processBrand(ctx context.Context, brandID string) (RetuneState, error) {
	lock := s.brandLock(brandID)
	if !lock.TryLock() {
		s.logger.Warn("brand correction already in progress", zap.String("brand_id", brandID))
		return StateIdle, nil
	}
	defer lock.Unlock()

	log := s.logger.With(zap.String("brand_id", brandID))

	drifted, err := s.detector.FindDrifted(ctx, brandID)
	if err != nil {
		log.Error("drift detection failed", zap.Error(err))
		return StateScanningBrands, err
	}
	if len(drifted) == 0 {
		log.Debug("no drift", zap.String("state", string(StateNoDrift)))
		return StateNoDrift, nil
	}
	log.Info("tone drift detected", zap.String("state", string(StateDriftFound)), zap.Int("drifted", len(drifted)))

	sig, err := s.brands.GetByBrand(ctx, brandID)
	if err != nil {
		log.Error("load signature failed", zap.Error(err))
		return StateDriftFound, fmt.Errorf("%w: %v", domain.ErrSignatureNotFound, err)
	}

	log.Debug("requesting correction", zap.String("state", string(StateRequestingCorrection)))
	traits, err := s.suggester.SuggestSignatureCorrection(ctx, sig, drifted)
	if err != nil {
		log.Error("correction request failed", zap.Error(err))
		return StateRequestingCorrection, err
	}

	proposal, err := s.issuer.DraftProposal(sig, traits, len(drifted))
	if err != nil {
		log.Error("draft proposal failed", zap.Error(err))
		return StateRequestingCorrection, err
	}

	nctx, cancel := context.WithTimeout(ctx, s.notifierTimeout)
	defer cancel()
	if err := s.notifier.ProposeCorrection(nctx, proposal); err != nil {
		if !errors.Is(err, domain.ErrNotifierUnreachable) {
			err = fmt.Errorf("%w: %v", domain.ErrNotifierUnreachable, err)
		}
		log.Error("notify proposal failed", zap.Error(err))
		return StateNotifying, err
	}
	if err := s.issuer.StoreProposal(ctx, proposal); err != nil {
		log.Error("store proposal failed", zap.Error(err))
		return StateNotifying, err
	}
	log.Info("correction proposal sent", zap.String("state", string(StateNotifying)))
	return StateNotifying, nil
}

func (s *RetuneScheduler) brandLock(brandID string) *sync.Mutex {
	v, _ := s.brandLocks.LoadOrStore(brandID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *RetuneScheduler) setState(st RetuneState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State devuelve el estado del supervisor (idle o scanning_brands).
func (s *RetuneScheduler) State() RetuneState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReport devuelve el reporte del ultimo barrido completo, si existe.
func (s *RetuneScheduler) LastReport() (SweepReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastReport == nil {
		return SweepReport{}, false
	}
	return *s.lastReport, true
}
