package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/resume-screener/internal/analysis"
	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/metrics"
	"github.com/jonathan/resume-screener/internal/profiles"
	"github.com/jonathan/resume-screener/internal/server/ratelimit"
)

const testSecret = "test-secret-key-for-jwt-signing"

// fakeUserStore is an in-memory UserStore and profiles.UserDirectory.
type fakeUserStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*db.User
	failing error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*db.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return uuid.Nil, f.failing
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return uuid.Nil, db.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	u := &db.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeUserStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return nil, f.failing
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return nil, f.failing
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserStore) LookupUserName(_ context.Context, id uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return "", &profiles.NotFoundError{Kind: "user", ID: id.String()}
	}
	return u.Name, nil
}

// addUser stores a user directly and returns its ID.
func (f *fakeUserStore) addUser(t *testing.T, name, email string, role db.Role) uuid.UUID {
	t.Helper()
	id, err := f.CreateUser(context.Background(), name, email, "")
	require.NoError(t, err)
	f.mu.Lock()
	f.users[id].Role = role
	f.mu.Unlock()
	return id
}

type fakeAnalyzer struct {
	mu     sync.Mutex
	result *analysis.Result
	err    error
	inputs []analysis.Input
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in analysis.Input) (*analysis.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.result
	return &cp, nil
}

type testEnv struct {
	server   *Server
	users    *fakeUserStore
	analyzer *fakeAnalyzer
	store    *profiles.MemoryStore
	profiles *profiles.Service
	jwt      *JWTService
	metrics  *metrics.Manager
}

type envOption func(*Config, *Deps)

func withRateLimiter(l *ratelimit.Limiter) envOption {
	return func(_ *Config, d *Deps) { d.RateLimiter = l }
}

func withPing(fn func(context.Context) error) envOption {
	return func(_ *Config, d *Deps) { d.Ping = fn }
}

func withMaxUpload(n int64) envOption {
	return func(c *Config, _ *Deps) { c.MaxUploadBytes = n }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	logger := zaptest.NewLogger(t)
	users := newFakeUserStore()
	store := profiles.NewMemoryStore()
	mgr := metrics.NewManager()
	svc := profiles.NewService(store, users, profiles.WithRecorder(mgr), profiles.WithLogger(logger))
	an := &fakeAnalyzer{result: &analysis.Result{
		IsEligible:      analysis.Eligible,
		ATSScore:        82,
		ExtractedSkills: []string{" React ", "NODE", "sql"},
	}}
	jwtCfg := &config.JWTConfig{Secret: testSecret, ExpirationHours: 1}

	cfg := Config{Port: 0, AllowedOrigins: []string{"http://localhost:3000"}}
	deps := Deps{
		Users:    users,
		Profiles: svc,
		Analyzer: an,
		JWT:      jwtCfg,
		Password: &config.PasswordConfig{BcryptCost: 4},
		Metrics:  mgr,
		Logger:   logger,
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	s, err := New(cfg, deps)
	require.NoError(t, err)
	return &testEnv{
		server:   s,
		users:    users,
		analyzer: an,
		store:    store,
		profiles: svc,
		jwt:      NewJWTService(jwtCfg),
		metrics:  mgr,
	}
}

func (e *testEnv) token(t *testing.T, id uuid.UUID, role int) string {
	t.Helper()
	tok, err := e.jwt.GenerateToken(id, role)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// resumeUpload builds a multipart analyze request. Empty fields are omitted.
func resumeUpload(t *testing.T, filename string, content []byte, jobTitle, jobDescription string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if jobTitle != "" {
		require.NoError(t, mw.WriteField("jobTitle", jobTitle))
	}
	if jobDescription != "" {
		require.NoError(t, mw.WriteField("jobDescription", jobDescription))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
