package legacyapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finetrack/internal/fines/identity"
	"finetrack/internal/fines/models"
	"finetrack/internal/fines/store"
	id "finetrack/pkg/domain"
	"finetrack/pkg/platform/circuit"
	"finetrack/pkg/platform/sentinel"
)

const (
	usersBody = `{"data":[
		{"_id":"u1","idNumber":"123456789V","name":"Nimal Perera","email":"nimal@example.com","address":"Colombo"},
		{"_id":"u2","idNumber":" 987654321v ","name":"","email":"kamala.silva@example.com"}
	]}`
	offencesBody = `[
		{"_id":"o1","offence":"Speeding","fine":"3000","type":"standard"},
		{"_id":"o2","offence":"Drunk driving","fine":25000,"type":"Court"},
		{"_id":"o3","offence":"Unpriced","fine":"","type":"other"}
	]`
	finesBody = `{"data":[
		{"_id":"f1","civilNIC":"123456789V","civilUserName":"Nimal Perera","fineManagementId":"o1","policeId":"p1","vehicalNumber":"CAB-1234","issueLocation":"Galle Road","date":"2024-03-15T00:00:00.000Z","time":"08:15","isPaid":false},
		{"_id":"f2","civilNIC":"987654321V","civilUserName":"Kamala Silva","fineManagementId":"o2","policeOfficerId":"p2","issueLocation":"Kandy","date":"2024-03-14","time":"22:40","isPaid":true}
	]}`
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func legacyHandler(t *testing.T, posted *fineDTO) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case PathUsers:
			_, _ = w.Write([]byte(usersBody))
		case PathOffences:
			_, _ = w.Write([]byte(offencesBody))
		case PathFines:
			_, _ = w.Write([]byte(finesBody))
		case PathIssueFine:
			require.NoError(t, json.NewDecoder(r.Body).Decode(posted))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"_id":"f3"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newStore(t *testing.T, posted *fineDTO) *Store {
	srv := newServer(t, legacyHandler(t, posted))
	return NewStore(NewClient(srv.URL, WithToken("svc-token")), store.NewLedger())
}

func TestStore_ReadsNormaliseShapes(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	civilians, err := s.ListCivilians(ctx)
	require.NoError(t, err)
	require.Len(t, civilians, 2)
	assert.Equal(t, id.IdentityCode("987654321v"), civilians[1].IdentityCode)
	assert.Equal(t, "Kamala Silva", civilians[1].DisplayName, "name derived from email")

	entries, err := s.ListOffences(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, decimal.NewFromInt(3000).Equal(entries[0].BaseAmount))
	assert.True(t, decimal.NewFromInt(25000).Equal(entries[1].BaseAmount))
	assert.Equal(t, models.CategoryCourt, entries[1].Category)
	assert.True(t, entries[2].BaseAmount.IsZero())
	assert.Equal(t, models.CategoryUnknown, entries[2].Category)

	fines, err := s.ListFines(ctx)
	require.NoError(t, err)
	require.Len(t, fines, 2)
	assert.Equal(t, models.Date{Year: 2024, Month: time.March, Day: 15}, fines[0].IssueDate)
	assert.Equal(t, id.OfficerID("p1"), fines[0].OfficerID)
	assert.Equal(t, id.OfficerID("p2"), fines[1].OfficerID, "policeOfficerId alias")
	assert.True(t, fines[1].IsPaid)
}

func TestStore_ToleratesIncompleteRecords(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathUsers:
			_, _ = w.Write([]byte(`[{"_id":"u1","idNumber":"123456789V","name":"Nimal Perera"},{"_id":"u9","name":"Admin"}]`))
		case PathFines:
			_, _ = w.Write([]byte(`{"data":[
				{"_id":"f1","civilNIC":"123456789V","fineManagementId":"o1","policeId":"p1","date":"2024-03-15","isPaid":false},
				{"_id":"f2","civilNIC":"123456789V","fineManagementId":"o1","policeId":"p1","date":"","isPaid":false},
				{"_id":"f3","civilNIC":"123456789V","fineManagementId":"o1","policeId":"p1","date":"15/03/2024","isPaid":true}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	s := NewStore(NewClient(srv.URL), store.NewLedger())

	civilians, err := s.ListCivilians(ctx)
	require.NoError(t, err)
	require.Len(t, civilians, 2)
	res := identity.Match("12345", civilians)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Nimal Perera", res.Candidates[0].DisplayName)

	fines, err := s.ListFines(ctx)
	require.NoError(t, err)
	require.Len(t, fines, 3)
	assert.Equal(t, id.FineID("f1"), fines[0].FineID)
	assert.False(t, fines[0].IssueDate.IsZero())
	assert.Equal(t, id.FineID("f2"), fines[1].FineID)
	assert.True(t, fines[1].IssueDate.IsZero())
	assert.Equal(t, id.FineID("f3"), fines[2].FineID)
	assert.True(t, fines[2].IssueDate.IsZero())
	assert.True(t, fines[2].IsPaid)
}

func TestStore_CreateFinePostsLegacyShape(t *testing.T) {
	var posted fineDTO
	s := newStore(t, &posted)

	err := s.CreateFine(context.Background(), models.FineRecord{
		FineID:               "f3",
		CivilianIdentityCode: "123456789V",
		CivilianDisplayName:  "Nimal Perera",
		OffenceID:            "o1",
		OfficerID:            "p1",
		IssueLocation:        "Fort",
		IssueDate:            models.Date{Year: 2024, Month: time.March, Day: 15},
		IssueTime:            "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "123456789V", posted.CivilNIC)
	assert.Equal(t, "o1", posted.FineManagementID)
	assert.Equal(t, "2024-03-15", posted.Date)
	assert.False(t, posted.IsPaid)
}

func TestStore_PaymentsRecordedLocally(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	require.NoError(t, s.MarkPaid(ctx, "f1"))
	assert.ErrorIs(t, s.MarkPaid(ctx, "f1"), sentinel.ErrAlreadyUsed)
	assert.ErrorIs(t, s.MarkPaid(ctx, "f2"), sentinel.ErrAlreadyUsed, "already paid upstream")
	assert.ErrorIs(t, s.MarkPaid(ctx, "nope"), sentinel.ErrNotFound)

	rec, err := s.GetFine(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, rec.IsPaid)

	ledger, err := s.PaidFines(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentLedger{"f1": true}, ledger)
}

func TestClient_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		category  ErrorCategory
		retryable bool
	}{
		{"server error", http.StatusBadGateway, "", ErrorOutage, true},
		{"rate limited", http.StatusTooManyRequests, "", ErrorRateLimited, true},
		{"bad token", http.StatusUnauthorized, "", ErrorAuthentication, false},
		{"not found", http.StatusNotFound, "", ErrorNotFound, false},
		{"malformed body", http.StatusOK, `{"data":null}`, ErrorBadData, false},
		{"scalar body", http.StatusOK, `"nope"`, ErrorBadData, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			s := NewStore(NewClient(srv.URL), store.NewLedger())

			_, err := s.ListOffences(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.category, GetCategory(err))
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	s := NewStore(NewClient(srv.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond})), store.NewLedger())

	_, err := s.ListFines(context.Background())
	assert.Equal(t, ErrorTimeout, GetCategory(err))
	assert.True(t, IsRetryable(err))
}

func TestClient_BreakerShortCircuitsAndRecovers(t *testing.T) {
	var calls atomic.Int32
	var healthy atomic.Bool
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	breaker := circuit.New("legacy-test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	s := NewStore(NewClient(srv.URL, WithBreaker(breaker), WithProbeInterval(time.Hour)), store.NewLedger())
	ctx := context.Background()

	for range 2 {
		_, err := s.ListOffences(ctx)
		assert.Equal(t, ErrorOutage, GetCategory(err))
	}
	require.True(t, breaker.IsOpen())

	_, err := s.ListOffences(ctx)
	assert.Equal(t, ErrorCircuitOpen, GetCategory(err))
	assert.True(t, IsRetryable(err))
	assert.Equal(t, int32(2), calls.Load(), "open breaker does not call upstream")

	healthy.Store(true)
	probing := NewClient(srv.URL, WithBreaker(breaker), WithProbeInterval(0))
	_, err = NewStore(probing, store.NewLedger()).ListOffences(ctx)
	require.NoError(t, err)
	assert.False(t, breaker.IsOpen())
}
