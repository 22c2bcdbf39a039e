package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"smartbin/internal/admin"
	"smartbin/internal/admin/handler/mocks"
	"smartbin/internal/identity/models"
	"smartbin/internal/ranking"
	dErrors "smartbin/pkg/domain-errors"
	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/testutil"
)

const adminID = "admin-1"

type AdminHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *AdminHandlerSuite) TestListUsers() {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.service.EXPECT().ListUsers(gomock.Any(), adminID).Return([]admin.UserSummary{
		{ID: "u1", Name: "Ada", Email: "ada@x.test", TotalPoints: 20, ScanCount: 2, Role: models.RoleUser, CreatedAt: created},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.AsIdentity(
		testutil.NewRawRequest(http.MethodGet, "/api/admin/users", ""), adminID, "admin"))

	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`[{"id":"u1","name":"Ada","email":"ada@x.test","totalPoints":20,"scanCount":2,"role":"user","createdAt":"2024-05-01T09:00:00Z"}]`, rr.Body.String())
}

func (s *AdminHandlerSuite) TestGetUser() {
	s.Run("found", func() {
		s.service.EXPECT().GetUser(gomock.Any(), adminID, "u1").Return(&models.Identity{
			ID: "u1", Name: "Ada", Email: "ada@x.test", PasswordHash: "hash", Role: models.RoleUser,
		}, nil)
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodGet, "/api/admin/users/u1", ""), adminID, "admin"))

		s.Equal(http.StatusOK, rr.Code)
		body := testutil.Decode[map[string]any](s.T(), rr)
		s.Equal("u1", body["id"])
		s.Equal([]any{}, body["scanHistory"])
		s.NotContains(body, "passwordHash")
	})

	s.Run("missing", func() {
		s.service.EXPECT().GetUser(gomock.Any(), adminID, "nope").Return(nil, dErrors.New(dErrors.CodeNotFound, "User not found"))
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodGet, "/api/admin/users/nope", ""), adminID, "admin"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *AdminHandlerSuite) TestUpdateUser() {
	s.Run("partial patch is forwarded", func() {
		points := 5
		s.service.EXPECT().UpdateUser(gomock.Any(), adminID, "u1", admin.Patch{TotalPoints: &points}).
			Return(&models.Identity{ID: "u1", Name: "Ada", Email: "ada@x.test", TotalPoints: 5, Role: models.RoleUser}, nil)

		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodPut, "/api/admin/users/u1", `{"totalPoints":5}`), adminID, "admin"))

		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"id":"u1","name":"Ada","email":"ada@x.test","totalPoints":5,"role":"user"}`, rr.Body.String())
	})

	s.Run("unknown field rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodPut, "/api/admin/users/u1", `{"scanHistory":[]}`), adminID, "admin"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("fractional points rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodPut, "/api/admin/users/u1", `{"totalPoints":1.5}`), adminID, "admin"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("self demotion", func() {
		role := "user"
		s.service.EXPECT().UpdateUser(gomock.Any(), adminID, adminID, admin.Patch{Role: &role}).
			Return(nil, dErrors.New(dErrors.CodeInvalidOperation, "Cannot remove admin role from yourself"))
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodPut, "/api/admin/users/"+adminID, `{"role":"user"}`), adminID, "admin"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_operation")
	})

	s.Run("email conflict", func() {
		s.service.EXPECT().UpdateUser(gomock.Any(), adminID, "u1", gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "Email already in use"))
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodPut, "/api/admin/users/u1", `{"email":"taken@x.test"}`), adminID, "admin"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})
}

func (s *AdminHandlerSuite) TestDeleteUser() {
	s.Run("deleted", func() {
		s.service.EXPECT().DeleteUser(gomock.Any(), adminID, "u1").Return(nil)
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodDelete, "/api/admin/users/u1", ""), adminID, "admin"))
		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"message":"User deleted successfully"}`, rr.Body.String())
	})

	s.Run("self delete", func() {
		s.service.EXPECT().DeleteUser(gomock.Any(), adminID, adminID).
			Return(dErrors.New(dErrors.CodeInvalidOperation, "Cannot delete your own account"))
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodDelete, "/api/admin/users/"+adminID, ""), adminID, "admin"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_operation")
	})

	s.Run("stale actor", func() {
		s.service.EXPECT().DeleteUser(gomock.Any(), adminID, "u1").
			Return(dErrors.New(dErrors.CodeForbidden, "Forbidden"))
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodDelete, "/api/admin/users/u1", ""), adminID, "admin"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}

func (s *AdminHandlerSuite) TestStats() {
	s.service.EXPECT().Stats(gomock.Any(), adminID).Return(&admin.Stats{
		TotalScans: 3,
		TotalUsers: 2,
		DustbinStats: []admin.DustbinStat{
			{DustbinID: "DB101", Location: "Main Street Park", Scans: 2},
			{DustbinID: "DB102", Location: "City Center Mall", Scans: 1},
		},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.AsIdentity(
		testutil.NewRawRequest(http.MethodGet, "/api/admin/stats", ""), adminID, "admin"))

	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"totalScans":3,"totalUsers":2,"dustbinStats":[
		{"dustbinId":"DB101","location":"Main Street Park","scans":2},
		{"dustbinId":"DB102","location":"City Center Mall","scans":1}]}`, rr.Body.String())
}

func (s *AdminHandlerSuite) TestRecentScansLimit() {
	cases := []struct {
		query string
		limit int
	}{
		{"", 0},
		{"?limit=5", 5},
		{"?limit=abc", 0},
	}
	for _, tc := range cases {
		s.Run("query "+tc.query, func() {
			s.service.EXPECT().RecentScans(gomock.Any(), adminID, tc.limit).Return(nil, nil)
			rr := testutil.DoRequest(s.router, testutil.AsIdentity(
				testutil.NewRawRequest(http.MethodGet, "/api/admin/recent-scans"+tc.query, ""), adminID, "admin"))
			s.Equal(http.StatusOK, rr.Code)
			s.JSONEq(`[]`, rr.Body.String())
		})
	}
}

func (s *AdminHandlerSuite) TestLeaderboardIncludesNullLastScan() {
	last := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.service.EXPECT().Leaderboard(gomock.Any(), adminID).Return([]ranking.Entry{
		{Rank: 1, ID: "u1", Name: "Ada", Email: "ada@x.test", TotalPoints: 10, ScanCount: 1, LastScan: &last, Role: models.RoleUser},
		{Rank: 2, ID: "u2", Name: "Bob", Email: "bob@x.test", Role: models.RoleUser},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.AsIdentity(
		testutil.NewRawRequest(http.MethodGet, "/api/admin/leaderboard", ""), adminID, "admin"))

	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`[
		{"rank":1,"id":"u1","name":"Ada","email":"ada@x.test","totalPoints":10,"scanCount":1,"lastScan":"2024-05-01T10:00:00Z","role":"user"},
		{"rank":2,"id":"u2","name":"Bob","email":"bob@x.test","totalPoints":0,"scanCount":0,"lastScan":null,"role":"user"}]`, rr.Body.String())
}

func (s *AdminHandlerSuite) TestAuditTrail() {
	s.Run("events rendered", func() {
		ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		s.service.EXPECT().AuditTrail(gomock.Any(), adminID, 10).Return([]audit.Event{
			{ID: "e1", Category: audit.CategoryLedger, Timestamp: ts, UserID: "u1", Action: "scan_credited", Subject: "DB101"},
		}, nil)
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodGet, "/api/admin/audit?limit=10", ""), adminID, "admin"))
		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`[{"id":"e1","category":"ledger","timestamp":"2024-05-01T10:00:00Z","userId":"u1","action":"scan_credited","subject":"DB101"}]`, rr.Body.String())
	})

	s.Run("not configured", func() {
		s.service.EXPECT().AuditTrail(gomock.Any(), adminID, 0).Return(nil, dErrors.New(dErrors.CodeNotFound, "audit trail is not available"))
		rr := testutil.DoRequest(s.router, testutil.AsIdentity(
			testutil.NewRawRequest(http.MethodGet, "/api/admin/audit", ""), adminID, "admin"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}
