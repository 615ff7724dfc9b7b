package identity

import (
	"EduPortal/entity"
	"EduPortal/internal/memstore"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cheapHasher() *Hasher {
	return &Hasher{Memory: 1024, Time: 1, Threads: 1, SaltLen: 8, KeyLen: 16}
}

func TestHasher(t *testing.T) {
	h := cheapHasher()
	encoded, err := h.Hash("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Errorf("unexpected encoding %q", encoded)
	}
	if ok, err := h.Verify("s3cret", encoded); err != nil || !ok {
		t.Errorf("Verify(correct) = %v, %v", ok, err)
	}
	if ok, _ := h.Verify("S3cret", encoded); ok {
		t.Error("Verify accepted a wrong password")
	}
	other, _ := h.Hash("s3cret")
	if other == encoded {
		t.Error("two hashes share a salt")
	}
	for _, bad := range []string{"", "plain", "$argon2i$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=19$m=x$a$b"} {
		if _, err := h.Verify("x", bad); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("Verify(%q) err = %v, want ErrMalformedHash", bad, err)
		}
	}
}

func TestLocalGateway(t *testing.T) {
	h := cheapHasher()
	hash, _ := h.Hash("right")
	store := memstore.New()
	store.SaveAccount(entity.Account{ID: "u-1", Email: "Ana@School.test", DisplayName: "Ana", PasswordHash: hash})
	store.SaveAccount(entity.Account{ID: "u-2", Email: "off@school.test", PasswordHash: hash, Disabled: true})
	g := NewLocalGateway(store, h, discard())
	ctx := context.Background()

	id, err := g.Verify(ctx, " ana@school.test ", "right")
	if err != nil || id.ID != "u-1" || id.DisplayName != "Ana" {
		t.Errorf("Verify = %+v, %v", id, err)
	}

	tests := []struct {
		email, password string
		want            error
	}{
		{"ana@school.test", "wrong", entity.ErrInvalidCredentials},
		{"ghost@school.test", "right", entity.ErrInvalidCredentials},
		{"off@school.test", "right", entity.ErrAccountDisabled},
		{"off@school.test", "wrong", entity.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		if _, err := g.Verify(ctx, tt.email, tt.password); !errors.Is(err, tt.want) {
			t.Errorf("Verify(%s, %s) err = %v, want %v", tt.email, tt.password, err, tt.want)
		}
	}
}

func identityProvider(t *testing.T, tokenStatus int, tokenBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "password" {
			t.Errorf("grant_type = %q", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		if tokenStatus != http.StatusOK {
			w.WriteHeader(tokenStatus)
			_, _ = io.WriteString(w, tokenBody)
			return
		}
		if r.Form.Get("username") != "ana@school.test" || r.Form.Get("password") != "right" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"sub": "idp-42", "email": "ana@school.test", "name": "Ana"})
	})
	return httptest.NewServer(mux)
}

func remote(srv *httptest.Server) *RemoteGateway {
	return NewRemoteGateway(RemoteOptions{
		TokenURL:    srv.URL + "/token",
		UserInfoURL: srv.URL + "/userinfo",
		ClientID:    "portal",
		HTTPClient:  srv.Client(),
	}, discard())
}

func TestRemoteGateway_Success(t *testing.T) {
	srv := identityProvider(t, http.StatusOK, "")
	defer srv.Close()

	id, err := remote(srv).Verify(context.Background(), "Ana@School.test", "right")
	if err != nil {
		t.Fatal(err)
	}
	if id.ID != "idp-42" || id.Email != "ana@school.test" || id.DisplayName != "Ana" {
		t.Errorf("identity = %+v", id)
	}
}

func TestRemoteGateway_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"bad password", http.StatusBadRequest, `{"error":"invalid_grant"}`, entity.ErrInvalidCredentials},
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid_client"}`, entity.ErrInvalidCredentials},
		{"disabled by code", http.StatusBadRequest, `{"error":"user_disabled"}`, entity.ErrAccountDisabled},
		{"forbidden", http.StatusForbidden, `{"error":"access_denied"}`, entity.ErrAccountDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := identityProvider(t, tt.status, tt.body)
			defer srv.Close()
			if _, err := remote(srv).Verify(context.Background(), "ana@school.test", "right"); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRemoteGateway_ProviderDown(t *testing.T) {
	srv := identityProvider(t, http.StatusInternalServerError, `{"error":"server_error"}`)
	defer srv.Close()

	_, err := remote(srv).Verify(context.Background(), "ana@school.test", "right")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, entity.ErrInvalidCredentials) || errors.Is(err, entity.ErrAccountDisabled) {
		t.Errorf("provider failure reported as %v", err)
	}
}
