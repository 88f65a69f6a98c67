package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyama86/snowpanel/domain/entity"
)

func newBackend(t *testing.T, posted *[]entity.Payload) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("connect.sid"); err != nil || c.Value != "ok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"result":[
				{"sys_id":"a","number":"INC001","impact":"1","urgency":"1","short_description":"printer down","priority":"1 - Critical"},
				{"sys_id":"b","number":"INC002","impact":"3","urgency":"3","short_description":"VPN outage","priority":"5 - Planning"}]}`))
		case http.MethodPost, http.MethodPut:
			var p entity.Payload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			*posted = append(*posted, p)
			_, _ = w.Write([]byte(`{"result":{}}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.toml")))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestListCommand(t *testing.T) {
	var posted []entity.Payload
	srv := newBackend(t, &posted)
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("SESSION_COOKIE", "ok")

	out, _, err := execute(t, "list", "--search", "vpn")
	require.NoError(t, err)
	assert.Contains(t, out, "INC002")
	assert.NotContains(t, out, "INC001")
}

func TestCreateCommand(t *testing.T) {
	var posted []entity.Payload
	srv := newBackend(t, &posted)
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("SESSION_COOKIE", "ok")

	_, stderr, err := execute(t, "create", "--impact", "1 - High", "--urgency", "2 - Medium", "--description", "VPN outage")
	require.NoError(t, err)
	assert.Equal(t, []entity.Payload{{Impact: 1, Urgency: 2, ShortDescription: "VPN outage"}}, posted)
	assert.Contains(t, stderr, "Incident inserted successfully!")
}

func TestUpdateCommandKeepsUnchangedFields(t *testing.T) {
	var posted []entity.Payload
	srv := newBackend(t, &posted)
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("SESSION_COOKIE", "ok")

	_, stderr, err := execute(t, "update", "b", "--description", "VPN restored")
	require.NoError(t, err)
	assert.Equal(t, []entity.Payload{{Impact: 3, Urgency: 3, ShortDescription: "VPN restored"}}, posted)
	assert.Contains(t, stderr, "Incident updated successfully!")
}

func TestDeleteCommandUnauthorized(t *testing.T) {
	var posted []entity.Payload
	srv := newBackend(t, &posted)
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("SESSION_COOKIE", "wrong")

	_, stderr, err := execute(t, "delete", "a")
	require.Error(t, err)
	assert.Contains(t, stderr, "Failed to delete incident.")
}

func TestLogoutCommandRequiresSessionCookie(t *testing.T) {
	var logins int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			logins++
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("SESSION_COOKIE", "")

	_, _, err := execute(t, "logout")
	assert.ErrorIs(t, err, errNoSessionCookie)
	assert.Zero(t, logins)
}

func TestLogoutCommand(t *testing.T) {
	var posted []entity.Payload
	srv := newBackend(t, &posted)
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("SESSION_COOKIE", "ok")

	out, _, err := execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
}
