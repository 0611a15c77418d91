package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/lending-registry/internal/config"
	"github.com/segyhp/lending-registry/internal/domain"
	"github.com/segyhp/lending-registry/internal/mocks"
	"github.com/segyhp/lending-registry/internal/repository"
	customError "github.com/segyhp/lending-registry/pkg/errors"
	"github.com/segyhp/lending-registry/pkg/utils"
)

func newTestService(repo repository.SnapshotRepository) (*LendingService, *utils.SimulatedClock) {
	clock := utils.NewSimulatedClock(start)
	return NewLendingService(repo, config.DefaultLending(), clock, domain.NopNotifier), clock
}

func newFileRepository(t *testing.T) repository.SnapshotRepository {
	t.Helper()
	return repository.NewFileSnapshotRepository(filepath.Join(t.TempDir(), "registry.json"))
}

// seedLoan registers jane and lends her video V1
func seedLoan(ctx context.Context, svc *LendingService) error {
	return svc.Update(ctx, func(r *LendingRegistry) error {
		if _, err := r.AddGenre("fiction"); err != nil {
			return err
		}
		if _, err := r.AddLocation(shelf.Room, shelf.Shelf); err != nil {
			return err
		}
		if _, err := r.AddCategory("standard", policy(2, "1")); err != nil {
			return err
		}
		if _, _, err := r.RegisterBorrower(jane, "addr", "standard", domain.NoDiscountCode); err != nil {
			return err
		}
		if _, err := r.CreateItem(domain.ItemInfo{Code: "V1", Title: "T"}, "fiction", shelf, video(), true); err != nil {
			return err
		}
		_, err := r.Borrow(jane, "V1")
		return err
	})
}

func TestLendingService_LoadWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockSnapshotRepository()
	repo.On("Load", ctx, "main").Return(nil, customError.ErrSnapshotNotFound)
	svc, _ := newTestService(repo)

	require.NoError(t, svc.Load(ctx))

	err := svc.View(ctx, func(r *LendingRegistry) error {
		assert.Zero(t, r.ItemCount())
		assert.Zero(t, r.BorrowerCount())
		return nil
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLendingService_LoadFailure(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockSnapshotRepository()
	repo.On("Load", ctx, "main").Return(nil, customError.WrapDatabaseError(errors.New("connection refused")))
	svc, _ := newTestService(repo)

	assert.ErrorIs(t, svc.Load(ctx), customError.ErrDatabase)

	err := svc.Update(ctx, func(r *LendingRegistry) error {
		t.Fatal("fn must not run when the registry cannot be reloaded")
		return nil
	})
	assert.ErrorIs(t, err, customError.ErrDatabase)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLendingService_UpdateSavesOnSuccess(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockSnapshotRepository()
	repo.On("Load", ctx, "main").Return(nil, customError.ErrSnapshotNotFound)
	repo.On("Save", ctx, mock.MatchedBy(func(s *domain.RegistrySnapshot) bool {
		return s.Name == "main" && len(s.Genres) == 1
	})).Return(nil).Once()
	svc, _ := newTestService(repo)

	err := svc.Update(ctx, func(r *LendingRegistry) error {
		_, err := r.AddGenre("fiction")
		return err
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLendingService_UpdateSkipsSaveOnFailure(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockSnapshotRepository()
	repo.On("Load", ctx, "main").Return(nil, customError.ErrSnapshotNotFound)
	svc, _ := newTestService(repo)

	err := svc.Update(ctx, func(r *LendingRegistry) error {
		return r.RemoveGenre("ghost")
	})

	assert.Equal(t, customError.ErrCodeGenreNotFound, customError.CodeOf(err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLendingService_SaveThenLoadRestoresState(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepository(t)
	svc, _ := newTestService(repo)
	require.NoError(t, seedLoan(ctx, svc))

	other, _ := newTestService(repo)
	require.NoError(t, other.Load(ctx))

	err := other.View(ctx, func(r *LendingRegistry) error {
		assert.Equal(t, 1, r.LoanCount())
		_, err := r.FindLoan(jane, "V1")
		return err
	})
	require.NoError(t, err)
}

func TestLendingService_UnsavedChangesAreDropped(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockSnapshotRepository()
	repo.On("Load", ctx, "main").Return(nil, customError.ErrSnapshotNotFound)
	repo.On("Save", ctx, mock.Anything).Return(customError.WrapDatabaseError(errors.New("disk full")))
	svc, _ := newTestService(repo)

	err := svc.Update(ctx, func(r *LendingRegistry) error {
		_, err := r.AddGenre("fiction")
		return err
	})
	require.ErrorIs(t, err, customError.ErrDatabase)

	err = svc.View(ctx, func(r *LendingRegistry) error {
		assert.Zero(t, r.GenreCount())
		return nil
	})
	require.NoError(t, err)
}

func TestLendingService_RunDailySweep(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(newFileRepository(t))
	require.NoError(t, seedLoan(ctx, svc))

	clock.Advance(15)
	report, err := svc.RunDailySweep(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, report.NewlyOverdue)
}

func TestLendingService_SharedStoreKeepsSweepResults(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepository(t)
	clock := utils.NewSimulatedClock(start)
	server := NewLendingService(repo, config.DefaultLending(), clock, domain.NopNotifier)
	scheduler := NewLendingService(repo, config.DefaultLending(), clock, domain.NopNotifier)
	require.NoError(t, server.Load(ctx))
	require.NoError(t, scheduler.Load(ctx))
	require.NoError(t, seedLoan(ctx, server))

	clock.Advance(15)
	report, err := scheduler.RunDailySweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.NewlyOverdue)

	err = server.Update(ctx, func(r *LendingRegistry) error {
		_, err := r.AddGenre("poetry")
		return err
	})
	require.NoError(t, err)

	fresh := NewLendingService(repo, config.DefaultLending(), clock, domain.NopNotifier)
	require.NoError(t, fresh.Load(ctx))
	err = fresh.View(ctx, func(r *LendingRegistry) error {
		b, err := r.Borrower(jane)
		if err != nil {
			return err
		}
		assert.Equal(t, 1, b.OverdueLoans())
		assert.False(t, b.MayBorrow())
		assert.Equal(t, 2, r.GenreCount())
		loan, err := r.FindLoan(jane, "V1")
		if err != nil {
			return err
		}
		assert.True(t, loan.IsOverdue())
		return nil
	})
	require.NoError(t, err)

	err = server.Update(ctx, func(r *LendingRegistry) error {
		_, err := r.Borrow(jane, "V1")
		return err
	})
	assert.Equal(t, customError.ErrCodeBorrowerNotAllowed, customError.CodeOf(err))
}

func TestLogNotifier(t *testing.T) {
	assert.NotPanics(t, func() {
		LogNotifier().Notify(domain.Notice{Kind: domain.NoticeReshelve, ItemCode: "B1", Message: "ready", Day: start})
		LogNotifier().Notify(domain.Notice{Kind: domain.NoticeLoanFee, ItemCode: "B1", Borrower: jane, Message: "0.50", Day: start})
	})
}
