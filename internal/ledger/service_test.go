package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"smartbin/internal/dustbin"
	idmodels "smartbin/internal/identity/models"
	idstore "smartbin/internal/identity/store"
	"smartbin/internal/ledger/cooldown"
	"smartbin/internal/ledger/mocks"
	"smartbin/internal/platform/metrics"
	dErrors "smartbin/pkg/domain-errors"
	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/platform/sentinel"
	"smartbin/pkg/testutil"
)

var t0 = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

var centralPark = dustbin.Dustbin{ID: "DB101", Location: "Central Park - Gate 1", QRCode: "QR_DB101"}

// =============================================================================
// Collaborator failures (gomock)
// =============================================================================

type LedgerServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockIdentityStore
	cooldowns *mocks.MockCooldownIndex
	catalog   *mocks.MockDustbinCatalog
	publisher *mocks.MockAuditPublisher
	service   *Service
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockIdentityStore(s.ctrl)
	s.cooldowns = mocks.NewMockCooldownIndex(s.ctrl)
	s.catalog = mocks.NewMockDustbinCatalog(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	svc, err := New(s.store, s.cooldowns, s.catalog,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.publisher),
		WithMetrics(metrics.New()),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *LedgerServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *LedgerServiceSuite) TestNew() {
	s.Run("nil collaborators are rejected", func() {
		_, err := New(nil, s.cooldowns, s.catalog)
		s.ErrorContains(err, "identity store is required")
		_, err = New(s.store, nil, s.catalog)
		s.ErrorContains(err, "cooldown index is required")
		_, err = New(s.store, s.cooldowns, nil)
		s.ErrorContains(err, "dustbin catalog is required")
	})

	s.Run("non-positive policy is rejected", func() {
		_, err := New(s.store, s.cooldowns, s.catalog, WithConfig(Config{Cooldown: time.Minute}))
		s.Error(err)
	})
}

func (s *LedgerServiceSuite) TestCredit_InputValidation() {
	ctx := context.Background()

	s.Run("blank dustbin id", func() {
		_, err := s.service.Credit(ctx, "u1", "  ", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown dustbin", func() {
		s.catalog.EXPECT().Lookup(gomock.Any(), "DB999").Return(dustbin.Dustbin{}, false)
		_, err := s.service.Credit(ctx, "u1", "DB999", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown identity", func() {
		s.catalog.EXPECT().Lookup(gomock.Any(), "DB101").Return(centralPark, true)
		s.store.EXPECT().FindByID(gomock.Any(), "ghost").Return(nil, sentinel.ErrNotFound)
		_, err := s.service.Credit(ctx, "ghost", "DB101", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("cancelled before the critical section", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s.catalog.EXPECT().Lookup(gomock.Any(), "DB101").Return(centralPark, true)
		_, err := s.service.Credit(cctx, "u1", "DB101", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func (s *LedgerServiceSuite) TestCredit_ErrorPropagation() {
	ctx := context.Background()
	user := &idmodels.Identity{ID: "u1", Role: idmodels.RoleUser}

	s.Run("cooldown read fails", func() {
		s.catalog.EXPECT().Lookup(gomock.Any(), "DB101").Return(centralPark, true)
		s.store.EXPECT().FindByID(gomock.Any(), "u1").Return(user, nil)
		s.cooldowns.EXPECT().Get(gomock.Any(), "u1", "DB101").Return(time.Time{}, false, errors.New("redis down"))

		_, err := s.service.Credit(ctx, "u1", "DB101", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("cooldown write fails leaves the store untouched", func() {
		s.catalog.EXPECT().Lookup(gomock.Any(), "DB101").Return(centralPark, true)
		s.store.EXPECT().FindByID(gomock.Any(), "u1").Return(user, nil)
		s.cooldowns.EXPECT().Get(gomock.Any(), "u1", "DB101").Return(time.Time{}, false, nil)
		s.cooldowns.EXPECT().Set(gomock.Any(), "u1", "DB101", t0).Return(errors.New("redis down"))

		_, err := s.service.Credit(ctx, "u1", "DB101", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("store write fails removes the fresh cooldown entry", func() {
		s.catalog.EXPECT().Lookup(gomock.Any(), "DB101").Return(centralPark, true)
		s.store.EXPECT().FindByID(gomock.Any(), "u1").Return(user, nil)
		s.cooldowns.EXPECT().Get(gomock.Any(), "u1", "DB101").Return(time.Time{}, false, nil)
		gomock.InOrder(
			s.cooldowns.EXPECT().Set(gomock.Any(), "u1", "DB101", t0).Return(nil),
			s.store.EXPECT().Update(gomock.Any(), "u1", gomock.Any()).Return(nil, errors.New("write fail")),
			s.cooldowns.EXPECT().Delete(gomock.Any(), "u1", "DB101").Return(nil),
		)

		_, err := s.service.Credit(ctx, "u1", "DB101", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("store write fails restores an expired cooldown entry", func() {
		previous := t0.Add(-time.Hour)
		s.catalog.EXPECT().Lookup(gomock.Any(), "DB101").Return(centralPark, true)
		s.store.EXPECT().FindByID(gomock.Any(), "u1").Return(user, nil)
		s.cooldowns.EXPECT().Get(gomock.Any(), "u1", "DB101").Return(previous, true, nil)
		gomock.InOrder(
			s.cooldowns.EXPECT().Set(gomock.Any(), "u1", "DB101", t0).Return(nil),
			s.store.EXPECT().Update(gomock.Any(), "u1", gomock.Any()).Return(nil, sentinel.ErrNotFound),
			s.cooldowns.EXPECT().Set(gomock.Any(), "u1", "DB101", previous).Return(nil),
		)

		_, err := s.service.Credit(ctx, "u1", "DB101", t0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *LedgerServiceSuite) TestCredit_AuditPublishFailureDoesNotFailScan() {
	user := &idmodels.Identity{ID: "u1"}
	credited := &idmodels.Identity{ID: "u1", TotalPoints: 10}

	s.catalog.EXPECT().Lookup(gomock.Any(), "DB101").Return(centralPark, true)
	s.store.EXPECT().FindByID(gomock.Any(), "u1").Return(user, nil)
	s.cooldowns.EXPECT().Get(gomock.Any(), "u1", "DB101").Return(time.Time{}, false, nil)
	s.cooldowns.EXPECT().Set(gomock.Any(), "u1", "DB101", t0).Return(nil)
	s.store.EXPECT().Update(gomock.Any(), "u1", gomock.Any()).Return(credited, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(string(audit.EventScanCredited), e.Action)
		s.Equal("DB101", e.Subject)
		return errors.New("sink down")
	})

	result, err := s.service.Credit(context.Background(), "u1", "DB101", t0)
	s.Require().NoError(err)
	s.Equal(10, result.TotalPoints)
}

func (s *LedgerServiceSuite) TestPurge() {
	ctx := context.Background()

	s.Run("clears cooldowns then the record", func() {
		gomock.InOrder(
			s.cooldowns.EXPECT().DeleteByIdentity(gomock.Any(), "u1").Return(nil),
			s.store.EXPECT().Delete(gomock.Any(), "u1").Return(nil),
		)
		s.NoError(s.service.Purge(ctx, "u1"))
	})

	s.Run("cooldown failure keeps the record", func() {
		s.cooldowns.EXPECT().DeleteByIdentity(gomock.Any(), "u1").Return(errors.New("redis down"))
		s.True(dErrors.HasCode(s.service.Purge(ctx, "u1"), dErrors.CodeInternal))
	})

	s.Run("missing identity", func() {
		s.cooldowns.EXPECT().DeleteByIdentity(gomock.Any(), "ghost").Return(nil)
		s.store.EXPECT().Delete(gomock.Any(), "ghost").Return(sentinel.ErrNotFound)
		s.True(dErrors.HasCode(s.service.Purge(ctx, "ghost"), dErrors.CodeNotFound))
	})
}

// =============================================================================
// Behaviour over real in-memory collaborators
// =============================================================================

type fixture struct {
	service   *Service
	store     *idstore.InMemory
	cooldowns *cooldown.InMemoryIndex
}

func newFixture(t *testing.T, identityIDs ...string) *fixture {
	t.Helper()
	store := idstore.New()
	for _, id := range identityIDs {
		ident, err := idmodels.NewIdentity(id, "Citizen "+id, id+"@example.com", "hash", idmodels.RoleUser, t0)
		require.NoError(t, err)
		require.NoError(t, store.Create(context.Background(), ident))
	}
	catalog, err := dustbin.NewCatalog(dustbin.Defaults...)
	require.NoError(t, err)
	index := cooldown.NewInMemoryIndex()
	svc, err := New(store, index, catalog)
	require.NoError(t, err)
	return &fixture{service: svc, store: store, cooldowns: index}
}

func TestCredit_CooldownTimeline(t *testing.T) {
	f := newFixture(t, "u1")
	ctx := context.Background()

	testutil.Given(t, "a first scan of DB101 at t=0", func(t *testing.T) {
		res, err := f.service.Credit(ctx, "u1", "DB101", t0)
		require.NoError(t, err)
		assert.Equal(t, 10, res.TotalPoints)
		assert.Equal(t, "Scan successful. 10 points added.", res.Message)
		assert.Equal(t, "DB101", res.Scan.DustbinID)
		assert.Equal(t, t0, res.Scan.Timestamp)

		testutil.When(t, "DB101 is scanned again at t=2min", func(t *testing.T) {
			_, err := f.service.Credit(ctx, "u1", "DB101", t0.Add(2*time.Minute))

			testutil.Then(t, "the scan is rate limited with about 3 minutes left", func(t *testing.T) {
				require.True(t, dErrors.HasCode(err, dErrors.CodeRateLimited))
				var cerr *CooldownError
				require.ErrorAs(t, err, &cerr)
				assert.Equal(t, 3, cerr.Minutes)
				assert.Equal(t, 3*time.Minute, cerr.RetryAfter)
				assert.Contains(t, err.Error(), "Try again in about 3 minute(s).")
			})
		})

		testutil.When(t, "a different dustbin is scanned at t=2min", func(t *testing.T) {
			res, err := f.service.Credit(ctx, "u1", "DB102", t0.Add(2*time.Minute))
			testutil.Then(t, "it is credited independently", func(t *testing.T) {
				require.NoError(t, err)
				assert.Equal(t, 20, res.TotalPoints)
			})
		})

		testutil.When(t, "DB101 is scanned again at t=6min", func(t *testing.T) {
			res, err := f.service.Credit(ctx, "u1", "DB101", t0.Add(6*time.Minute))
			testutil.Then(t, "the scan is credited", func(t *testing.T) {
				require.NoError(t, err)
				assert.Equal(t, 30, res.TotalPoints)
			})
		})
	})

	stored, err := f.store.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, stored.TotalPoints)
	assert.Len(t, stored.ScanHistory, 3)
	at, ok, _ := f.cooldowns.Get(ctx, "u1", "DB101")
	assert.True(t, ok)
	assert.Equal(t, t0.Add(6*time.Minute), at)
}

func TestCredit_CooldownBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		offset  time.Duration
		allowed bool
		minutes int
	}{
		{"immediately", 0, false, 5},
		{"one second in", time.Second, false, 5},
		{"just under four minutes", 4*time.Minute - time.Nanosecond, false, 2},
		{"exactly four minutes", 4 * time.Minute, false, 1},
		{"one nanosecond short of the window", 5*time.Minute - time.Nanosecond, false, 1},
		{"exactly at the window", 5 * time.Minute, true, 0},
		{"a clock step backwards", -time.Minute, false, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "u1")
			_, err := f.service.Credit(context.Background(), "u1", "DB103", t0)
			require.NoError(t, err)

			_, err = f.service.Credit(context.Background(), "u1", "DB103", t0.Add(tc.offset))
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			var cerr *CooldownError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.minutes, cerr.Minutes)
		})
	}
}

func TestCredit_HistoryIsBoundedNewestFirst(t *testing.T) {
	f := newFixture(t, "u1")
	ctx := context.Background()
	bins := []string{"DB101", "DB102", "DB103"}

	var last time.Time
	for n := range 25 {
		last = t0.Add(time.Duration(n) * 6 * time.Minute)
		_, err := f.service.Credit(ctx, "u1", bins[n%len(bins)], last)
		require.NoError(t, err)
	}

	stored, err := f.store.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 250, stored.TotalPoints)
	require.Len(t, stored.ScanHistory, 20)
	assert.Equal(t, last, stored.ScanHistory[0].Timestamp)
	for i := 1; i < len(stored.ScanHistory); i++ {
		assert.True(t, stored.ScanHistory[i-1].Timestamp.After(stored.ScanHistory[i].Timestamp))
	}
}

func TestCredit_ConcurrentSpamOnOnePairCreditsOnce(t *testing.T) {
	f := newFixture(t, "u1")
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		credited atomic.Int32
		limited  atomic.Int32
	)
	start := make(chan struct{})
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.service.Credit(ctx, "u1", "DB101", t0)
			switch {
			case err == nil:
				credited.Add(1)
			case dErrors.HasCode(err, dErrors.CodeRateLimited):
				limited.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, credited.Load())
	assert.EqualValues(t, 49, limited.Load())
	stored, err := f.store.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.TotalPoints)
	assert.Len(t, stored.ScanHistory, 1)
}

func TestCredit_ConcurrentDistinctPairsAllCredit(t *testing.T) {
	users := []string{"u1", "u2", "u3", "u4"}
	f := newFixture(t, users...)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, u := range users {
		for _, bin := range []string{"DB101", "DB102", "DB103"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.Credit(ctx, u, bin, t0)
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	for _, u := range users {
		stored, err := f.store.FindByID(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, 30, stored.TotalPoints, u)
	}
	assert.Equal(t, 12, f.cooldowns.Len())
}

func TestPurge_RemovesRecordAndCooldowns(t *testing.T) {
	f := newFixture(t, "u1", "u2")
	ctx := context.Background()
	_, err := f.service.Credit(ctx, "u1", "DB101", t0)
	require.NoError(t, err)
	_, err = f.service.Credit(ctx, "u2", "DB101", t0)
	require.NoError(t, err)

	require.NoError(t, f.service.Purge(ctx, "u1"))

	_, err = f.store.FindByID(ctx, "u1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, ok, _ := f.cooldowns.Get(ctx, "u1", "DB101")
	assert.False(t, ok)
	_, ok, _ = f.cooldowns.Get(ctx, "u2", "DB101")
	assert.True(t, ok)

	_, err = f.service.Credit(ctx, "u1", "DB102", t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
