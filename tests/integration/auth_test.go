//go:build integration

package integration

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkarolak/greenroom/internal/testutil"
)

func TestSignup_RedirectsToMembers(t *testing.T) {
	client := newNoRedirectBrowser()

	resp, err := client.Signup("Alice", testutil.RandomEmail(), "password123")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/members", resp.Header.Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "session cookie should be set")
	assert.NotEmpty(t, sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)
}

func TestSignup_DuplicateEmailStaysOnForm(t *testing.T) {
	first := newBrowser()
	acc := signupUser(t, first, "taken")

	second := newBrowser()
	resp, err := second.Signup("Somebody Else", acc.Email, "otherpassword")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.ReadBody(t, resp)
	assert.Contains(t, body, "already registered")
	assert.Contains(t, body, "Try again")
}

func TestSignup_BlankNameRendersInlineError(t *testing.T) {
	client := newBrowser()

	resp, err := client.PostForm("/signup", url.Values{
		"name":     {""},
		"email":    {testutil.RandomEmail()},
		"password": {"password123"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.ReadBody(t, resp)
	assert.Contains(t, body, "must not be empty")
	assert.Contains(t, body, "Try again")
}

func TestLogin_ReturningUser(t *testing.T) {
	client := newBrowser()
	acc := signupUser(t, client, "returning")
	client.ClearCookies()

	resp, err := client.Login(acc.Email, acc.Password)
	require.NoError(t, err)

	body := testutil.ReadBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/members", resp.Request.URL.Path)
	assert.Contains(t, body, acc.Name)
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	client := newBrowser()
	acc := signupUser(t, client, "shouty")
	client.ClearCookies()

	resp, err := client.Login(strings.ToUpper(acc.Email), acc.Password)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/members", resp.Request.URL.Path)
}

func TestLogin_FailuresShareOneMessage(t *testing.T) {
	client := newBrowser()
	acc := signupUser(t, client, "victim")
	client.ClearCookies()

	resp, err := client.Login(acc.Email, "wrong-password")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	wrongPassword := testutil.ReadBody(t, resp)

	resp, err = client.Login(testutil.RandomEmail(), "whatever")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	unknownEmail := testutil.ReadBody(t, resp)

	// An attacker probing the form must not learn which half was wrong.
	assert.Contains(t, wrongPassword, "Invalid email or password combination.")
	assert.Contains(t, unknownEmail, "Invalid email or password combination.")
}

func TestLogout_ClearsCookieAndSession(t *testing.T) {
	client := newNoRedirectBrowser()

	resp, err := client.Signup(testutil.RandomName("leaver"), testutil.RandomEmail(), "password123")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, err = client.GET("/logout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			assert.True(t, c.MaxAge < 0, "session cookie should be cleared")
		}
	}

	resp, err = client.GET("/members")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// A second logout without a session is harmless.
	resp, err = client.GET("/logout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestSession_TamperedCookieIsAnonymous(t *testing.T) {
	client := newBrowser()
	signupUser(t, client, "tampered")

	cookie := client.Cookie(sessionCookieName)
	require.NotNil(t, cookie)

	intruder := newNoRedirectBrowser()
	intruder.SetCookie(&http.Cookie{Name: sessionCookieName, Value: cookie.Value + "x"})

	resp, err := intruder.GET("/members")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestSession_ExpiryIsEnforced(t *testing.T) {
	client := newNoRedirectBrowser()
	name := testutil.RandomName("expiring")

	resp, err := client.Signup(name, testutil.RandomEmail(), "password123")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	expireSessions(t, name)

	resp, err = client.GET("/members")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestSession_BrowsingDoesNotExtendExpiry(t *testing.T) {
	client := newBrowser()
	acc := signupUser(t, client, "steady")

	before := sessionExpiry(t, acc.Name)

	for i := 0; i < 3; i++ {
		resp, err := client.GET("/members")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	after := sessionExpiry(t, acc.Name)
	assert.True(t, after.Equal(before), "expiry moved from %v to %v", before, after)
}
