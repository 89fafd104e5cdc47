//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tkarolak/greenroom/internal/testutil"
)

// account holds the credentials of a user registered for one test.
type account struct {
	Name     string
	Email    string
	Password string
}

// signupUser registers a fresh account through the signup form. The
// client follows the redirect and ends up signed in on the members
// page. Use unique name prefixes so DB lookups by name stay unambiguous.
func signupUser(t *testing.T, client *testutil.Client, namePrefix string) account {
	t.Helper()

	acc := account{
		Name:     testutil.RandomName(namePrefix),
		Email:    testutil.RandomEmail(),
		Password: "password123",
	}

	resp, err := client.Signup(acc.Name, acc.Email, acc.Password)
	require.NoError(t, err)
	body := testutil.ReadBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, "signup response: %s", body)
	require.Equal(t, "/members", resp.Request.URL.Path, "signup should land on the members page")
	return acc
}

// loginAsAdmin signs the client in with the seeded admin account.
func loginAsAdmin(t *testing.T, client *testutil.Client) {
	t.Helper()

	resp, err := client.Login(adminEmail, adminPassword)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/members", resp.Request.URL.Path, "admin login should land on the members page")
}

// userIDByEmail looks a user id up directly in the database.
func userIDByEmail(t *testing.T, email string) string {
	t.Helper()

	var id string
	err := testDB.QueryRow(context.Background(),
		`SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

// userRoleByEmail reads a user's stored role directly from the database.
func userRoleByEmail(t *testing.T, email string) string {
	t.Helper()

	var role string
	err := testDB.QueryRow(context.Background(),
		`SELECT role FROM users WHERE email = $1`, email).Scan(&role)
	require.NoError(t, err)
	return role
}

// sessionExpiry returns the stored expiry of the named user's session.
// Callers must hold exactly one session for the name.
func sessionExpiry(t *testing.T, name string) time.Time {
	t.Helper()

	var expiresAt time.Time
	err := testDB.QueryRow(context.Background(),
		`SELECT expires_at FROM sessions WHERE name = $1`, name).Scan(&expiresAt)
	require.NoError(t, err)
	return expiresAt
}

// expireSessions backdates every session of the named user so the next
// request finds them expired.
func expireSessions(t *testing.T, name string) {
	t.Helper()

	_, err := testDB.Exec(context.Background(),
		`UPDATE sessions SET expires_at = NOW() - INTERVAL '1 minute' WHERE name = $1`, name)
	require.NoError(t, err)
}
