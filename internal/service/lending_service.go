package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/segyhp/lending-registry/internal/config"
	"github.com/segyhp/lending-registry/internal/domain"
	"github.com/segyhp/lending-registry/internal/repository"
	customError "github.com/segyhp/lending-registry/pkg/errors"
	"github.com/segyhp/lending-registry/pkg/utils"
)

type LendingService struct {
	mu       sync.Mutex
	registry *LendingRegistry
	repo     repository.SnapshotRepository
	config   config.LendingConfig
	clock    utils.Clock
	notifier domain.Notifier
}

func NewLendingService(
	repo repository.SnapshotRepository,
	cfg config.LendingConfig,
	clock utils.Clock,
	notifier domain.Notifier,
) *LendingService {
	return &LendingService{
		registry: NewLendingRegistry(cfg, clock, notifier),
		repo:     repo,
		config:   cfg,
		clock:    clock,
		notifier: notifier,
	}
}

// LogNotifier writes every notice to the standard logger
func LogNotifier() domain.Notifier {
	return domain.NotifierFunc(func(n domain.Notice) {
		if n.Borrower != (domain.BorrowerKey{}) {
			log.Printf("[%s] %s item=%s borrower=%q: %s", n.Day.Format("2006-01-02"), n.Kind, n.ItemCode, n.Borrower, n.Message)
			return
		}
		log.Printf("[%s] %s item=%s: %s", n.Day.Format("2006-01-02"), n.Kind, n.ItemCode, n.Message)
	})
}

// Load replaces the in-memory registry with the stored snapshot.
// A missing snapshot leaves an empty registry.
func (s *LendingService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}
	log.Printf("Loaded registry %s: %d item(s), %d borrower(s), %d active loan(s)",
		s.config.RegistryName, s.registry.ItemCount(), s.registry.BorrowerCount(), s.registry.LoanCount())
	return nil
}

// refresh rebuilds the registry from the store. The server and the scheduler
// share one store, so every operation starts from the latest saved state.
// Caller holds mu.
func (s *LendingService) refresh(ctx context.Context) error {
	snap, err := s.repo.Load(ctx, s.config.RegistryName)
	if errors.Is(err, customError.ErrSnapshotNotFound) {
		s.registry = NewLendingRegistry(s.config, s.clock, s.notifier)
		return nil
	}
	if err != nil {
		return err
	}

	registry, err := RestoreLendingRegistry(snap, s.config, s.clock, s.notifier)
	if err != nil {
		return err
	}
	s.registry = registry
	return nil
}

// Update reloads the registry, runs fn against it and saves the result when fn
// succeeds. An InvariantBroken error from fn is logged; the state is not saved.
func (s *LendingService) Update(ctx context.Context, fn func(r *LendingRegistry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}
	if err := fn(s.registry); err != nil {
		if customError.IsInvariantBroken(err) {
			log.Printf("Invariant broken, state not saved: %v", err)
		}
		return err
	}
	return s.repo.Save(ctx, s.registry.Snapshot())
}

// View reloads the registry and runs fn against it without saving.
func (s *LendingService) View(ctx context.Context, fn func(r *LendingRegistry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}
	return fn(s.registry)
}

// RunDailySweep runs the overdue sweep and saves the registry.
func (s *LendingService) RunDailySweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	err := s.Update(ctx, func(r *LendingRegistry) error {
		var err error
		report, err = r.DailySweep()
		return err
	})
	if err != nil {
		return report, err
	}
	log.Printf("Daily sweep on %s: %d loan(s) checked, %d newly overdue, %d escalated",
		report.Day.Format("2006-01-02"), report.Checked, report.NewlyOverdue, report.Escalated)
	return report, nil
}
