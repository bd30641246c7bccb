package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hamkharj/internal/api"
)

// newSession wires a session to a fake API the way main does: the client
// reads the token from the session and tears it down on 401.
func newSession(t *testing.T, handler http.Handler) (*Session, *Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewStore(filepath.Join(t.TempDir(), "token"))
	sess := New(store, nil)
	client := api.NewClient(api.Options{
		BaseURL:        srv.URL,
		TokenSource:    sess.Token,
		OnUnauthorized: sess.Teardown,
	})
	sess.Bind(client)
	return sess, store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// handlePattern registers a "METHOD /path" pattern on mux; Go 1.21's
// ServeMux has no method-pattern routing, so the method check is inlined.
func handlePattern(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}

func profileHandler(user api.User, hits *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		_ = json.NewEncoder(w).Encode(user)
	})
}

func TestResolveWithoutToken(t *testing.T) {
	sess, _ := newSession(t, profileHandler(api.User{}, nil))

	assert.Equal(t, StateUninitialized, sess.State())
	assert.Equal(t, StateAnonymous, sess.Resolve(context.Background()))
	assert.Nil(t, sess.User())
}

func TestResolveUnapproved(t *testing.T) {
	sess, store := newSession(t, profileHandler(api.User{ID: 2, Username: "nima", IsApproved: false}, nil))
	require.NoError(t, store.Save("stored-token"))

	state := sess.Resolve(context.Background())
	assert.Equal(t, StateUnapproved, state)
	require.NotNil(t, sess.User())
	assert.Equal(t, "nima", sess.User().Username)
}

func TestResolveApproved(t *testing.T) {
	sess, store := newSession(t, profileHandler(api.User{ID: 1, Username: "sara", IsApproved: true}, nil))
	require.NoError(t, store.Save("stored-token"))

	assert.Equal(t, StateApproved, sess.Resolve(context.Background()))
	assert.Equal(t, "stored-token", sess.Token())
}

func TestResolveRejectedToken(t *testing.T) {
	sess, store := newSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	require.NoError(t, store.Save("stale-token"))

	assert.Equal(t, StateAnonymous, sess.Resolve(context.Background()))
	assert.Empty(t, sess.Token())

	// The 401 teardown also removed the persisted copy.
	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestResolveServerError(t *testing.T) {
	sess, store := newSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	require.NoError(t, store.Save("some-token"))

	assert.Equal(t, StateAnonymous, sess.Resolve(context.Background()))
	assert.Nil(t, sess.User())

	// A non-401 failure orphans the token client-side; the file survives
	// until the next 401 cleans it up.
	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "some-token", persisted)
}

func TestResolveExpiredTokenSkipsFetch(t *testing.T) {
	var hits atomic.Int32
	sess, store := newSession(t, profileHandler(api.User{IsApproved: true}, &hits))
	require.NoError(t, store.Save(signedToken(t, time.Now().Add(-time.Hour))))

	assert.Equal(t, StateAnonymous, sess.Resolve(context.Background()))
	assert.Zero(t, hits.Load(), "expired token must not trigger a profile fetch")
}

func TestResolveLiveJWT(t *testing.T) {
	sess, store := newSession(t, profileHandler(api.User{IsApproved: true}, nil))
	require.NoError(t, store.Save(signedToken(t, time.Now().Add(time.Hour))))

	assert.Equal(t, StateApproved, sess.Resolve(context.Background()))
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	handlePattern(mux, "POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(api.Token{AccessToken: "new-token", TokenType: "bearer"})
	})
	handlePattern(mux, "GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer new-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(api.User{ID: 1, Username: "sara", IsApproved: true})
	})

	sess, store := newSession(t, mux)

	state, err := sess.Login(context.Background(), "sara", "secret")
	require.NoError(t, err)
	assert.Equal(t, StateApproved, state)
	assert.Equal(t, "new-token", sess.Token())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-token", persisted)
}

func TestLoginBadCredentials(t *testing.T) {
	sess, _ := newSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	}))

	_, err := sess.Login(context.Background(), "sara", "wrong")
	require.Error(t, err)
	assert.EqualError(t, err, "Incorrect username or password")
	assert.Empty(t, sess.Token())
}

func TestLogout(t *testing.T) {
	sess, store := newSession(t, profileHandler(api.User{IsApproved: true}, nil))
	require.NoError(t, store.Save("token"))
	require.Equal(t, StateApproved, sess.Resolve(context.Background()))

	sess.Logout()

	assert.Equal(t, StateAnonymous, sess.State())
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.User())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestStorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewStore(path)
	require.NoError(t, store.Save("secret-token"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice must not fail")
}
