package inviteengine

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// cookieJar keeps the latest value of each cookie the app sets.
type cookieJar map[string]*http.Cookie

func (j cookieJar) update(rec *httptest.ResponseRecorder) {
	for _, c := range rec.Result().Cookies() {
		j[c.Name] = c
	}
}

func (j cookieJar) list() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(j))
	for _, c := range j {
		out = append(out, c)
	}
	return out
}

func newAdminApp(t *testing.T) *App {
	t.Helper()
	return newTestApp(t, Config{
		AdminPassword: "secret",
		SessionSecret: "0123456789abcdef0123456789abcdef",
	})
}

// csrfFor loads the login page and returns the CSRF token it was issued.
func csrfFor(t *testing.T, a *App, jar cookieJar) string {
	t.Helper()
	rec := doRequest(a, http.MethodGet, "/admin/", "", "", jar.list()...)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /admin/ status = %d", rec.Code)
	}
	jar.update(rec)
	c, ok := jar["_csrf"]
	if !ok || c.Value == "" {
		t.Fatal("no CSRF cookie issued")
	}
	return c.Value
}

func login(t *testing.T, a *App, jar cookieJar, password string) *httptest.ResponseRecorder {
	t.Helper()
	token := csrfFor(t, a, jar)
	form := url.Values{"password": {password}, "_csrf": {token}}
	rec := doRequest(a, http.MethodPost, "/admin/login/", echo.MIMEApplicationForm, form.Encode(), jar.list()...)
	jar.update(rec)
	return rec
}

func deleteInvite(a *App, jar cookieJar, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/admin/invites/"+id+"/", nil)
	req.Header.Set("X-CSRF-Token", jar["_csrf"].Value)
	for _, c := range jar.list() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestAdminLoginPage(t *testing.T) {
	a := newAdminApp(t)

	rec := doRequest(a, http.MethodGet, "/admin/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="password"`) {
		t.Errorf("login form missing: %s", rec.Body.String())
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
}

func TestAdminLoginRequiresCSRF(t *testing.T) {
	a := newAdminApp(t)

	form := url.Values{"password": {"secret"}}
	rec := doRequest(a, http.MethodPost, "/admin/login/", echo.MIMEApplicationForm, form.Encode())
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestAdminLoginWrongPassword(t *testing.T) {
	a := newAdminApp(t)
	jar := cookieJar{}

	rec := login(t, a, jar, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Wrong password") {
		t.Errorf("expected error message, got %s", rec.Body.String())
	}
}

func TestAdminLoginRateLimited(t *testing.T) {
	a := newAdminApp(t)
	jar := cookieJar{}

	for i := 0; i < 5; i++ {
		if rec := login(t, a, jar, "wrong"); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d", i, rec.Code)
		}
	}
	if rec := login(t, a, jar, "secret"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status after 5 failures = %d, want 429", rec.Code)
	}
}

func TestAdminDashboardAndDelete(t *testing.T) {
	a := newAdminApp(t)
	jar := cookieJar{}

	resp := decodeInvite(t, postJSON(a, "/api/invites", scenarioOne))
	id := resp.Metadata.InviteID
	u, _ := url.Parse(resp.ImageURL)
	file := filepath.Join(a.Config.Storage.LocalPath, filepath.Base(u.Path))
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("stored image missing: %v", err)
	}

	rec := login(t, a, jar, "secret")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/" {
		t.Fatalf("login status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = doRequest(a, http.MethodGet, "/admin/", "", "", jar.list()...)
	body := rec.Body.String()
	if !strings.Contains(body, "Max, turning 7, 2028-06-20") || !strings.Contains(body, id) {
		t.Errorf("dashboard does not list the invite: %s", body)
	}

	rec = deleteInvite(a, jar, id)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "deleted") {
		t.Errorf("expected deleted message")
	}
	if n, _ := a.Store.CountInvites(); n != 0 {
		t.Errorf("CountInvites = %d, want 0", n)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Errorf("stored image still present: %v", err)
	}

	if rec := deleteInvite(a, jar, id); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestAdminDeleteRequiresSession(t *testing.T) {
	a := newAdminApp(t)
	jar := cookieJar{}
	csrfFor(t, a, jar)

	if rec := deleteInvite(a, jar, "anything"); rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want redirect to login", rec.Code)
	}
}

func TestAdminLogout(t *testing.T) {
	a := newAdminApp(t)
	jar := cookieJar{}
	login(t, a, jar, "secret")

	form := url.Values{"_csrf": {jar["_csrf"].Value}}
	rec := doRequest(a, http.MethodPost, "/admin/logout/", echo.MIMEApplicationForm, form.Encode(), jar.list()...)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("logout status = %d", rec.Code)
	}
	jar.update(rec)
	if c := jar[sessionName]; c != nil && c.MaxAge >= 0 {
		t.Errorf("session cookie not expired: %+v", c)
	}
}
