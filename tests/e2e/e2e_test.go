//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseURL = getEnv("FLEETFLOW_API_URL", "http://127.0.0.1:8080")
	apiBase = baseURL + "/api"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

type TestClient struct {
	httpClient *http.Client
}

func NewTestClient() *TestClient {
	jar, _ := cookiejar.New(nil)
	return &TestClient{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *TestClient) Do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// TestE2E_Workflows exercises the deployed server end to end: account
// lifecycle, cookie-based session flow, and RBAC boundaries between an
// admin and a dispatcher.
func TestE2E_Workflows(t *testing.T) {
	suffix := time.Now().Unix()
	adminEmail := "e2e-admin-" + strconv.FormatInt(suffix, 10) + "@fleetflow.local"
	dispatchEmail := "e2e-dispatch-" + strconv.FormatInt(suffix, 10) + "@fleetflow.local"
	password := "e2e_password_123"

	admin := NewTestClient()
	dispatcher := NewTestClient()

	// 1. Admin registration and session
	t.Run("Admin Flow", func(t *testing.T) {
		resp, err := admin.Do("POST", apiBase+"/auth/register", map[string]string{
			"fullName": "E2E Admin",
			"username": "e2eadmin" + strconv.FormatInt(suffix, 10),
			"email":    adminEmail,
			"password": password,
			"role":     "admin",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decode(t, resp)
		assert.Equal(t, true, body["success"])

		// The register auto-login left cookies in the jar; /me works.
		resp, err = admin.Do("GET", apiBase+"/auth/me", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		me := decode(t, resp)["user"].(map[string]any)
		assert.Equal(t, adminEmail, me["email"])

		// Admin can list users.
		resp, err = admin.Do("GET", apiBase+"/users", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	// 2. Dispatcher registration and RBAC boundaries
	t.Run("Dispatcher Flow", func(t *testing.T) {
		resp, err := dispatcher.Do("POST", apiBase+"/auth/register", map[string]string{
			"fullName": "E2E Dispatcher",
			"username": "e2edispatch" + strconv.FormatInt(suffix, 10),
			"email":    dispatchEmail,
			"password": password,
			"role":     "dispatcher",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		// Dispatcher can read vehicles...
		resp, err = dispatcher.Do("GET", apiBase+"/vehicles", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		// ...but not user administration.
		resp, err = dispatcher.Do("GET", apiBase+"/users", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()

		// ...and not finance approval.
		resp, err = dispatcher.Do("POST", apiBase+"/finance/approve", map[string]any{
			"expenseId": "exp_none",
			"approve":   true,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		body := decode(t, resp)
		assert.NotNil(t, body["required"], "permission denial must name the required set")
	})

	// 3. Refresh and logout
	t.Run("Session Lifecycle", func(t *testing.T) {
		resp, err := admin.Do("POST", apiBase+"/auth/refresh", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode(t, resp)
		assert.NotEmpty(t, body["accessToken"])

		resp, err = admin.Do("POST", apiBase+"/auth/logout", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		// Cookies are gone: a fresh /me is rejected at the edge.
		resp, err = admin.Do("GET", apiBase+"/auth/me", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()

		// Anonymous dashboard access bounces to the login page.
		resp, err = admin.Do("GET", baseURL+"/dashboard", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, "/auth", resp.Header.Get("Location"))
		resp.Body.Close()
	})
}

