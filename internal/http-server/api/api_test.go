package api

import (
	"EduPortal/entity"
	"EduPortal/impl/core"
	"EduPortal/internal/config"
	"EduPortal/internal/memstore"
	"EduPortal/internal/service/access"
	"EduPortal/internal/service/audit"
	"EduPortal/internal/service/auth"
	"EduPortal/internal/service/identity"
	"EduPortal/internal/service/lifecycle"
	"EduPortal/internal/service/membership"
	"EduPortal/internal/service/scope"
	"EduPortal/internal/service/settings"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	store *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()

	hasher := &identity.Hasher{Memory: 1024, Time: 1, Threads: 1, SaltLen: 8, KeyLen: 16}
	hash, err := hasher.Hash("pass")
	if err != nil {
		t.Fatal(err)
	}
	store.SaveAccount(entity.Account{ID: "u-admin", Email: "admin@portal.test", DisplayName: "Admin", PasswordHash: hash})
	store.SaveAccount(entity.Account{ID: "u-fr", Email: "fr@portal.test", DisplayName: "Franchisor", PasswordHash: hash})

	fa := entity.NewFranchisor("f-A", "Alpha")
	fa.Status = entity.StatusActive
	store.SaveFranchisor(*fa)
	store.SaveSchool(*entity.NewSchool("s-1", "f-A", "North"))
	store.SaveSchool(*entity.NewSchool("s-2", "f-A", "South"))

	store.AddMembership(entity.MembershipRecord{ID: "m-1", UserID: "u-admin", Portal: entity.PortalAdmin})
	store.AddMembership(entity.MembershipRecord{
		ID: "m-2", UserID: "u-fr", Portal: entity.PortalFranchisor, FranchisorID: "f-A", Role: "Staff",
		Scope: &entity.Scope{Kind: entity.ScopeSchoolList, SchoolIDs: []string{"s-1"}},
	})

	emitter := audit.NewEmitter(log, 1, audit.NewStoreSink(store))
	resolver := membership.NewResolver(config.BackendLocal, store, log)
	evaluator := scope.NewEvaluator(store)
	selector := access.NewSelector(resolver, evaluator, store, log)
	guard := settings.NewGuard(store, emitter, log)

	authService := auth.NewAuthService(log, identity.NewLocalGateway(store, hasher, log), resolver, selector)
	authService.SetRepository(store)
	authService.SetSettings(guard)
	authService.SetAuditEmitter(emitter)

	handler := core.New(log)
	handler.SetAuthService(authService)
	handler.SetLifecycle(lifecycle.NewManager(store, emitter, log))
	handler.SetSettings(guard)
	handler.SetScope(evaluator, store)
	handler.SetAuditLog(store)

	conf := &config.Config{BackendMode: config.BackendLocal}
	conf.Listen.TimeoutSeconds = 5

	ts := &testServer{t: t, store: store, srv: httptest.NewServer(NewRouter(conf, log, handler, nil))}
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) do(method, path, token string, body any, header map[string]string) (int, envelope, http.Header) {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	if err != nil {
		ts.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatal(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		ts.t.Fatalf("%s %s: decode body: %v", method, path, err)
	}
	return resp.StatusCode, env, resp.Header
}

func (ts *testServer) login(email string) auth.LoginResult {
	ts.t.Helper()
	status, env, _ := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "pass"}, nil)
	if status != http.StatusOK {
		ts.t.Fatalf("login %s: status %d, %+v", email, status, env)
	}
	var res auth.LoginResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		ts.t.Fatal(err)
	}
	return res
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	status, env, _ := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "fr@portal.test", "password": "nope"}, nil)
	if status != http.StatusUnauthorized || env.Code != "INVALID_CREDENTIALS" {
		t.Errorf("status %d, code %q", status, env.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/v1/auth/post-login-options", "/api/v1/system-settings", "/api/v1/audit/events"} {
		status, env, _ := ts.do(http.MethodGet, path, "", nil, nil)
		if status != http.StatusUnauthorized || env.Code != "UNAUTHENTICATED" {
			t.Errorf("%s: status %d, code %q", path, status, env.Code)
		}
	}
}

func TestFranchisorFlow(t *testing.T) {
	ts := newTestServer(t)
	res := ts.login("fr@portal.test")
	if res.DefaultRedirect == nil || res.DefaultRedirect.Path != "/franchisor/dashboard" {
		t.Fatalf("default redirect = %+v", res.DefaultRedirect)
	}

	status, env, _ := ts.do(http.MethodGet, "/api/v1/auth/post-login-options", res.Token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("options status %d", status)
	}
	var opts access.Options
	if err := json.Unmarshal(env.Data, &opts); err != nil {
		t.Fatal(err)
	}
	if len(opts.Portals) != 1 || opts.Portals[0].Portal != entity.PortalFranchisor {
		t.Errorf("options = %+v", opts)
	}

	status, env, _ = ts.do(http.MethodPost, "/api/v1/auth/select-access", res.Token,
		map[string]string{"portal": "FRANCHISOR", "context": "f-A", "returnTo": "/franchisor/schools"}, nil)
	if status != http.StatusOK || !strings.Contains(string(env.Data), `"redirect_to":"/franchisor/schools"`) {
		t.Errorf("select: status %d, data %s", status, env.Data)
	}

	status, env, _ = ts.do(http.MethodGet, "/api/v1/franchisor/f-A/schools", res.Token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("schools status %d", status)
	}
	var schools []entity.School
	if err := json.Unmarshal(env.Data, &schools); err != nil {
		t.Fatal(err)
	}
	if len(schools) != 1 || schools[0].ID != "s-1" {
		t.Errorf("schools = %+v", schools)
	}

	outOfScope, envOut, _ := ts.do(http.MethodGet, "/api/v1/franchisor/f-A/schools/s-2", res.Token, nil, nil)
	missing, envMissing, _ := ts.do(http.MethodGet, "/api/v1/franchisor/f-A/schools/s-404", res.Token, nil, nil)
	if outOfScope != http.StatusNotFound || missing != http.StatusNotFound || envOut.Message != envMissing.Message {
		t.Errorf("out of scope %d %+v, missing %d %+v", outOfScope, envOut, missing, envMissing)
	}

	status, env, _ = ts.do(http.MethodPost, "/api/v1/entities/schools/s-1/status-transition", res.Token, map[string]string{"action": "SUSPEND"}, nil)
	if status != http.StatusNotFound || env.Code != "NOT_FOUND" {
		t.Errorf("non-admin transition: status %d, code %q", status, env.Code)
	}

	status, _, _ = ts.do(http.MethodPost, "/api/v1/auth/logout", res.Token, nil, nil)
	if status != http.StatusOK {
		t.Errorf("logout status %d", status)
	}
	status, _, _ = ts.do(http.MethodGet, "/api/v1/auth/post-login-options", res.Token, nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("options after logout: status %d", status)
	}
}

func TestAdminStatusTransitions(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("admin@portal.test").Token
	path := "/api/v1/entities/schools/s-2/status-transition"

	status, env, _ := ts.do(http.MethodPost, path, token, map[string]string{"action": "SUSPEND", "reason_category": "billing"}, nil)
	if status != http.StatusOK {
		t.Fatalf("suspend: status %d, %+v", status, env)
	}
	status, env, _ = ts.do(http.MethodPost, path, token, map[string]string{"action": "SUSPEND"}, nil)
	if status != http.StatusBadRequest || env.Code != "INVALID_TRANSITION" {
		t.Errorf("second suspend: status %d, code %q", status, env.Code)
	}
	status, env, _ = ts.do(http.MethodPost, "/api/v1/entities/schools/s-2/status-transition", token, map[string]string{"action": "APPROVE"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("approve school: status %d, code %q", status, env.Code)
	}
	status, _, _ = ts.do(http.MethodPost, "/api/v1/entities/widgets/s-2/status-transition", token, map[string]string{"action": "SUSPEND"}, nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown kind: status %d", status)
	}

	status, env, _ = ts.do(http.MethodGet, "/api/v1/entities/schools/s-2/status-history", token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("history status %d", status)
	}
	var page entity.HistoryPage
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].ToStatus != entity.StatusSuspended || page.Items[0].ActorID != "u-admin" {
		t.Errorf("history = %+v", page)
	}

	status, env, _ = ts.do(http.MethodGet, "/api/v1/audit/events?limit=10", token, nil, nil)
	if status != http.StatusOK || !strings.Contains(string(env.Data), string(entity.AuditSchoolStatusChanged)) {
		t.Errorf("audit: status %d, data %s", status, env.Data)
	}
}

func TestAdminSettingsConcurrency(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("admin@portal.test").Token

	status, _, header := ts.do(http.MethodGet, "/api/v1/system-settings", token, nil, nil)
	if status != http.StatusOK || header.Get("ETag") != `"0"` {
		t.Fatalf("get: status %d, etag %q", status, header.Get("ETag"))
	}

	status, env, header := ts.do(http.MethodPatch, "/api/v1/system-settings", token,
		map[string]any{"max_login_attempts": 7}, map[string]string{"If-Match": `"0"`})
	if status != http.StatusOK || header.Get("ETag") != `"1"` {
		t.Fatalf("first patch: status %d, etag %q, %+v", status, header.Get("ETag"), env)
	}

	status, env, _ = ts.do(http.MethodPatch, "/api/v1/system-settings", token,
		map[string]any{"lockout_minutes": 30}, map[string]string{"If-Match": `"0"`})
	if status != http.StatusConflict || env.Code != "CONFLICT" {
		t.Errorf("stale patch: status %d, code %q", status, env.Code)
	}

	status, env, _ = ts.do(http.MethodPatch, "/api/v1/system-settings", token,
		map[string]any{"expected_version": 1, "lockout_minutes": -1}, nil)
	if status != http.StatusBadRequest || env.Code != "VALIDATION_FAILED" {
		t.Errorf("invalid patch: status %d, code %q", status, env.Code)
	}

	fr := ts.login("fr@portal.test").Token
	status, _, _ = ts.do(http.MethodGet, "/api/v1/system-settings", fr, nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("non-admin settings read: status %d", status)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	status, env, _ := ts.do(http.MethodGet, "/api/v1/nothing-here", "", nil, nil)
	if status != http.StatusNotFound || env.Success {
		t.Errorf("status %d, %+v", status, env)
	}
}

func TestAdminSchoolDirectory(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("admin@portal.test").Token

	status, _, _ := ts.do(http.MethodPost, "/api/v1/entities/schools/s-1/status-transition", token, map[string]string{"action": "SUSPEND"}, nil)
	if status != http.StatusOK {
		t.Fatalf("suspend status %d", status)
	}

	tests := []struct {
		query  string
		status int
		want   []string
	}{
		{"", http.StatusOK, []string{"s-1", "s-2"}},
		{"?status=suspenso", http.StatusOK, []string{"s-1"}},
		{"?status=ativo", http.StatusOK, []string{"s-2"}},
		{"?status=closed", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			status, env, _ := ts.do(http.MethodGet, "/api/v1/schools"+tt.query, token, nil, nil)
			if status != tt.status {
				t.Fatalf("status %d, want %d", status, tt.status)
			}
			if tt.want == nil {
				return
			}
			var schools []entity.School
			if err := json.Unmarshal(env.Data, &schools); err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, s := range schools {
				got = append(got, s.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("schools = %v, want %v", got, tt.want)
			}
		})
	}

	fr := ts.login("fr@portal.test").Token
	if status, _, _ := ts.do(http.MethodGet, "/api/v1/schools", fr, nil, nil); status != http.StatusNotFound {
		t.Errorf("non-admin directory: status %d", status)
	}
}
