package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/auth"
	"github.com/collegepedia/collegepedia/internal/college"
	"github.com/collegepedia/collegepedia/internal/department"
	"github.com/collegepedia/collegepedia/internal/district"
	"github.com/collegepedia/collegepedia/internal/profile"
)

// --- Request helpers ---

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected an error object")
	return errObj["code"].(string)
}

// --- Session fixtures ---

// fakeSource serves sessions keyed by access token.
type fakeSource struct {
	mu         sync.Mutex
	sessions   map[string]*auth.Session
	hub        *auth.Hub
	signInFn   func(email, password string) (*auth.Session, error)
	signOutErr error
}

func newFakeSource(sessions ...*auth.Session) *fakeSource {
	src := &fakeSource{sessions: map[string]*auth.Session{}, hub: auth.NewHub()}
	for _, s := range sessions {
		src.sessions[s.AccessToken] = s
	}
	return src
}

func (f *fakeSource) GetSession(_ context.Context, token string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[token], nil
}

func (f *fakeSource) OnSessionChange(fn func(auth.Event)) *auth.Subscription {
	return f.hub.Subscribe(fn)
}

func (f *fakeSource) SignIn(_ context.Context, email, password string) (*auth.Session, error) {
	if f.signInFn == nil {
		return nil, auth.ErrInvalidCredentials
	}
	sess, err := f.signInFn(email, password)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.sessions[sess.AccessToken] = sess
	f.mu.Unlock()
	return sess, nil
}

func (f *fakeSource) SignOut(_ context.Context, token string) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.mu.Lock()
	sess, ok := f.sessions[token]
	delete(f.sessions, token)
	f.mu.Unlock()
	if !ok {
		return auth.ErrInvalidToken
	}
	f.hub.Publish(auth.Event{Kind: auth.EventSignedOut, SessionID: sess.ID, UserID: sess.User.ID})
	return nil
}

func (f *fakeSource) SessionID(token string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[token]; ok {
		return s.ID
	}
	return ""
}

func newSession(roleName string) *auth.Session {
	meta := auth.Metadata{auth.MetaFullName: "Test User"}
	if roleName != "" {
		meta[auth.MetaRole] = roleName
	}
	id := uuid.NewString()
	return &auth.Session{
		ID:          id,
		AccessToken: "tok-" + id,
		User: &auth.User{
			ID:        uuid.New(),
			Email:     "user@example.com",
			Metadata:  meta,
			CreatedAt: time.Now().UTC(),
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// serveAs runs h behind the Session middleware. A nil session serves the
// request anonymously.
func serveAs(src *fakeSource, sess *auth.Session, h http.HandlerFunc, req *http.Request, w http.ResponseWriter) {
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}
	middleware.Session(src, time.Second)(h).ServeHTTP(w, req)
}

// --- Repository mocks ---

type mockCollegeRepo struct {
	createFn   func(ctx context.Context, c *college.College) error
	getByIDFn  func(ctx context.Context, id uuid.UUID) (*college.College, error)
	listFn     func(ctx context.Context, filter college.ListFilter) (*college.ListResult, error)
	updateFn   func(ctx context.Context, id uuid.UUID, fields college.UpdateFields) (*college.College, error)
	deleteFn   func(ctx context.Context, id uuid.UUID) error
	countFn    func(ctx context.Context) (int, error)
	featuredFn func(ctx context.Context, minRating, limit int) ([]college.College, error)
	topRatedFn func(ctx context.Context, field college.RatingField, collegeType string, limit int) ([]college.College, error)
}

func (m *mockCollegeRepo) Create(ctx context.Context, c *college.College) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockCollegeRepo) GetByID(ctx context.Context, id uuid.UUID) (*college.College, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, college.ErrCollegeNotFound
}

func (m *mockCollegeRepo) List(ctx context.Context, filter college.ListFilter) (*college.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return &college.ListResult{Colleges: []college.College{}, Page: filter.Page, Limit: filter.Limit}, nil
}

func (m *mockCollegeRepo) Update(ctx context.Context, id uuid.UUID, fields college.UpdateFields) (*college.College, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, college.ErrCollegeNotFound
}

func (m *mockCollegeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCollegeRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockCollegeRepo) Featured(ctx context.Context, minRating, limit int) ([]college.College, error) {
	if m.featuredFn != nil {
		return m.featuredFn(ctx, minRating, limit)
	}
	return nil, nil
}

func (m *mockCollegeRepo) TopRated(ctx context.Context, field college.RatingField, collegeType string, limit int) ([]college.College, error) {
	if m.topRatedFn != nil {
		return m.topRatedFn(ctx, field, collegeType, limit)
	}
	return nil, nil
}

type mockDepartmentRepo struct {
	createFn        func(ctx context.Context, d *department.Department) error
	listByCollegeFn func(ctx context.Context, collegeID uuid.UUID) ([]department.Department, error)
	updateFn        func(ctx context.Context, id uuid.UUID, fields department.UpdateFields) (*department.Department, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) error
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockDepartmentRepo) Create(ctx context.Context, d *department.Department) error {
	if m.createFn != nil {
		return m.createFn(ctx, d)
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, _ uuid.UUID) (*department.Department, error) {
	return nil, department.ErrDepartmentNotFound
}

func (m *mockDepartmentRepo) ListByCollege(ctx context.Context, collegeID uuid.UUID) ([]department.Department, error) {
	if m.listByCollegeFn != nil {
		return m.listByCollegeFn(ctx, collegeID)
	}
	return []department.Department{}, nil
}

func (m *mockDepartmentRepo) Update(ctx context.Context, id uuid.UUID, fields department.UpdateFields) (*department.Department, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, department.ErrDepartmentNotFound
}

func (m *mockDepartmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockDepartmentRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockDistrictRepo struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*district.District, error)
	listFn    func(ctx context.Context) ([]district.District, error)
	countFn   func(ctx context.Context) (int, error)
}

func (m *mockDistrictRepo) Create(_ context.Context, d *district.District) error {
	d.ID = uuid.New()
	return nil
}

func (m *mockDistrictRepo) GetByID(ctx context.Context, id uuid.UUID) (*district.District, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, district.ErrDistrictNotFound
}

func (m *mockDistrictRepo) List(ctx context.Context) ([]district.District, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []district.District{}, nil
}

func (m *mockDistrictRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockProfileRepo struct {
	listRecentFn func(ctx context.Context, limit int) ([]profile.Profile, error)
	countFn      func(ctx context.Context) (int, error)
}

func (m *mockProfileRepo) Exists(_ context.Context, _ uuid.UUID) (bool, error) { return true, nil }
func (m *mockProfileRepo) Create(_ context.Context, _ *profile.Profile) error  { return nil }

func (m *mockProfileRepo) ListRecent(ctx context.Context, limit int) ([]profile.Profile, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return []profile.Profile{}, nil
}

func (m *mockProfileRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

// --- Sample data ---

func ptr[T any](v T) *T { return &v }

func sampleCollege(id uuid.UUID) *college.College {
	now := time.Now().UTC()
	return &college.College{
		ID:                   id,
		Name:                 "Government College of Technology",
		Type:                 "engineering",
		DistrictID:           uuid.New(),
		DistrictName:         "Coimbatore",
		Address:              ptr("Thadagam Road"),
		InfrastructureRating: ptr(5),
		PlacementRating:      ptr(4),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}
