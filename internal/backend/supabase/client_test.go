package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zheliyou/internal/domain"
	"zheliyou/internal/domain/models"
	"zheliyou/internal/remote"
)

type recorded struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   string
}

type fakeProject struct {
	mu       sync.Mutex
	requests []recorded
	handler  http.HandlerFunc
}

func (f *fakeProject) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newFakeProject(t *testing.T, handler http.HandlerFunc) (*fakeProject, *Client) {
	t.Helper()
	fp := &fakeProject{handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := map[string]string{}
		for k, v := range r.URL.Query() {
			q[k] = v[0]
		}
		fp.mu.Lock()
		fp.requests = append(fp.requests, recorded{Method: r.Method, Path: r.URL.Path, Query: q, Header: r.Header.Clone(), Body: string(body)})
		fp.mu.Unlock()
		fp.handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "anon-key", Options{})
	require.NoError(t, err)
	return fp, c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewRequiresURLAndKey(t *testing.T) {
	_, err := New("", "key", Options{})
	assert.True(t, domain.IsValidation(err))
	_, err = New("http://localhost", " ", Options{})
	assert.True(t, domain.IsValidation(err))
}

func TestSelectBuildsPostgrestQuery(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"t1","creator_id":"u1","title":"West Lake","destination":"Hangzhou"}]`)
	})

	var trips []models.Trip
	q := domain.Query{}.Where(domain.Eq("creator_id", "u1")).OrderBy("created_at", false)
	require.NoError(t, c.Select(context.Background(), domain.TableTrips, q, &trips))

	require.Len(t, trips, 1)
	assert.Equal(t, "West Lake", trips[0].Title)

	req := fp.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/trips", req.Path)
	assert.Equal(t, "*", req.Query["select"])
	assert.Equal(t, "eq.u1", req.Query["creator_id"])
	assert.Equal(t, "created_at.desc.nullslast", req.Query["order"])
	assert.Equal(t, "anon-key", req.Header.Get("apikey"))
}

func TestSelectOrGroupAndInFilter(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	q := domain.Query{
		AnyOf:   []domain.Filter{domain.Eq("user_id", "u1"), domain.Eq("matched_user_id", "u1")},
		Filters: []domain.Filter{{Field: "status", Op: domain.OpIn, Value: []string{"pending", "accepted"}}},
		Limit:   5,
	}
	var matches []models.Match
	require.NoError(t, c.Select(context.Background(), domain.TableMatches, q, &matches))
	assert.Empty(t, matches)

	req := fp.last()
	assert.Equal(t, "(user_id.eq.u1,matched_user_id.eq.u1)", req.Query["or"])
	assert.Equal(t, "in.(pending,accepted)", req.Query["status"])
	assert.Equal(t, "5", req.Query["limit"])
}

func TestSelectRejectsUnknownOperatorBeforeCalling(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	var rows []map[string]any
	err := c.Select(context.Background(), domain.TableTrips, domain.Query{Filters: []domain.Filter{{Field: "x", Op: "between", Value: 1}}}, &rows)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, fp.requests)
}

func TestSingleRowErrorIsServiceError(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotAcceptable, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned","details":"The result contains 0 rows"}`)
	})

	var trip models.Trip
	err := c.Select(context.Background(), domain.TableTrips, domain.ByID("missing"), &trip)

	var svc *remote.ServiceError
	require.True(t, errors.As(err, &svc))
	assert.Equal(t, "PGRST116", svc.Code)
	assert.Equal(t, "JSON object requested, multiple (or no) rows returned", svc.Message)
}

func TestInsertReturnsStoredRow(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"id":"t9","creator_id":"u1","title":"Wuzhen","destination":"Jiaxing","status":"planning"}`)
	})

	var stored models.Trip
	in := models.Trip{CreatorID: "u1", Title: "Wuzhen", Destination: "Jiaxing"}
	require.NoError(t, c.Insert(context.Background(), domain.TableTrips, in, &stored))
	assert.Equal(t, "t9", stored.ID)

	req := fp.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))
	assert.Contains(t, req.Header.Values("Accept"), "application/vnd.pgrst.object+json")

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &sent))
	assert.Equal(t, "Wuzhen", sent["title"])
}

func TestInsertUnencodableRecordKeepsClientUsable(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	err := c.Insert(context.Background(), domain.TableTrips, map[string]any{"bad": make(chan int)}, nil)
	assert.True(t, domain.IsValidation(err))

	var rows []map[string]any
	assert.NoError(t, c.Select(context.Background(), domain.TableTrips, domain.Query{}, &rows))
}

func TestDuplicateKeyIsServiceError(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, `{"code":"23505","message":"duplicate key value violates unique constraint \"user_profiles_username_key\""}`)
	})

	err := c.Insert(context.Background(), domain.TableUserProfiles, models.UserProfile{ID: "u1", Username: "lin"}, nil)
	kind, msg := remote.Classify(err)
	assert.Equal(t, remote.KindService, kind)
	assert.Contains(t, msg, "duplicate key value violates unique constraint")
}

func TestUpdateAndDeleteRequireFilter(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	err := c.Update(context.Background(), domain.TableTrips, domain.Query{}, map[string]any{"title": "x"}, nil)
	assert.True(t, domain.IsValidation(err))
	err = c.Delete(context.Background(), domain.TableTrips, domain.Query{})
	assert.True(t, domain.IsValidation(err))
}

func TestDeleteSendsFilter(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), domain.TableTrips, domain.ByID("t1")))
	req := fp.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "eq.t1", req.Query["id"])
	assert.Equal(t, "return=minimal", req.Header.Get("Prefer"))
}

func TestCancelledContextSkipsCall(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var rows []map[string]any
	err := c.Select(ctx, domain.TableTrips, domain.Query{}, &rows)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fp.requests)
}

func TestSignInMapsSession(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,"expires_at":1700000000,
			"user":{"id":"9b2f7c1e-1111-4a55-8c2e-3f1d2a7e9c10","email":"lin@example.com","role":"authenticated","user_metadata":{"username":"lin"}}
		}`)
	})

	s, err := c.SignIn(context.Background(), "lin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at", s.AccessToken)
	assert.Equal(t, 3600, s.ExpiresIn)
	assert.Equal(t, "9b2f7c1e-1111-4a55-8c2e-3f1d2a7e9c10", s.User.ID)
	assert.Equal(t, "lin", s.User.Metadata["username"])

	req := fp.last()
	assert.Equal(t, "/auth/v1/token", req.Path)
	assert.Equal(t, "password", req.Query["grant_type"])
}

func TestSignInBadCredentialsIsServiceError(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	})

	_, err := c.SignIn(context.Background(), "lin@example.com", "wrong")
	var svc *remote.ServiceError
	require.True(t, errors.As(err, &svc))
	assert.Equal(t, 400, svc.Status)
	assert.Equal(t, "Invalid login credentials", svc.Message)
}

func TestSignInMissingPasswordIsServiceError(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := c.SignIn(context.Background(), "lin@example.com", "")
	assert.True(t, remote.IsServiceError(err, "validation_failed"))
	assert.Empty(t, fp.requests)
}

func TestCurrentUserNeedsToken(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"9b2f7c1e-1111-4a55-8c2e-3f1d2a7e9c10","email":"lin@example.com"}`)
	})

	_, err := c.CurrentUser(context.Background())
	assert.True(t, remote.IsServiceError(err, "session_missing"))

	p, err := c.WithToken("user-jwt").CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "lin@example.com", p.Email)

	req := fp.last()
	assert.Equal(t, "/auth/v1/user", req.Path)
	assert.Equal(t, "Bearer user-jwt", req.Header.Get("Authorization"))
}

func TestWithTokenScopesTableCalls(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	var rows []map[string]any
	require.NoError(t, c.WithToken("user-jwt").Select(context.Background(), domain.TableTrips, domain.Query{}, &rows))
	assert.Equal(t, "Bearer user-jwt", fp.last().Header.Get("Authorization"))

	require.NoError(t, c.Select(context.Background(), domain.TableTrips, domain.Query{}, &rows))
	assert.Equal(t, "Bearer anon-key", fp.last().Header.Get("Authorization"))
}

func TestTranslateLeavesTransportErrorsAlone(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	assert.Same(t, err, translate(err))
	assert.Nil(t, translate(nil))
}

func TestTranslateAuthStatusWithoutBody(t *testing.T) {
	err := translate(errors.New("response status code 500"))
	var svc *remote.ServiceError
	require.True(t, errors.As(err, &svc))
	assert.Equal(t, 500, svc.Status)
	assert.Equal(t, "auth request failed with status 500", svc.Message)
}

func TestSubscribeRejectsRangeFilters(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	_, err := c.Subscribe(domain.TableTrips, []domain.Filter{{Field: "budget", Op: domain.OpGt, Value: 1}}, func(models.ChangeEvent) {})
	assert.True(t, domain.IsValidation(err))
}

func TestSubscribeSharesPollerUntilStopped(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	a, err := c.Subscribe(domain.TableTrips, nil, func(models.ChangeEvent) {})
	require.NoError(t, err)
	b, err := c.Subscribe(domain.TableTrips, nil, func(models.ChangeEvent) {})
	require.NoError(t, err)

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	assert.Equal(t, 1, c.polls.Watching())

	a.Stop()
	assert.Equal(t, 1, c.polls.Watching())
	b.Stop()
	assert.Equal(t, 0, c.polls.Watching())
}

func TestSubscribePollsWithEachSubscribersToken(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	c.polls.Interval = 10 * time.Millisecond

	a, err := c.WithToken("token-A").Subscribe(domain.TableTrips, nil, func(models.ChangeEvent) {})
	require.NoError(t, err)
	b, err := c.WithToken("token-B").Subscribe(domain.TableTrips, nil, func(models.ChangeEvent) {})
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	defer b.Stop()
	assert.Equal(t, 2, c.polls.Watching())

	a.Stop()
	assert.Equal(t, 1, c.polls.Watching())

	fp.mu.Lock()
	seen := len(fp.requests)
	fp.mu.Unlock()
	assert.Eventually(t, func() bool {
		fp.mu.Lock()
		defer fp.mu.Unlock()
		return len(fp.requests) >= seen+3
	}, time.Second, 5*time.Millisecond)

	// A's poller may have been mid-request when it stopped
	fp.mu.Lock()
	defer fp.mu.Unlock()
	byToken := map[string]int{}
	for _, req := range fp.requests[seen:] {
		byToken[req.Header.Get("Authorization")]++
	}
	assert.LessOrEqual(t, byToken["Bearer token-A"], 1)
	assert.GreaterOrEqual(t, byToken["Bearer token-B"], 2)
}
