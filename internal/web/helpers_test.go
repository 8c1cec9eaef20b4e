package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-web/internal/logger"
	"gitlab.com/yelinaung/expense-web/internal/models"
	"gitlab.com/yelinaung/expense-web/internal/service"
	"gitlab.com/yelinaung/expense-web/internal/service/mocks"
)

const testPassword = "correct-horse-battery"

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (p *fakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePinger) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

type testApp struct {
	db     *mocks.DB
	pinger *fakePinger
	server *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger.InitHashSaltForTesting("web-test-salt-0123456789abcdef0123")

	db := mocks.NewDB()
	opts := service.Options{Location: time.UTC}
	pinger := &fakePinger{}

	srv, err := NewServer(Config{
		Auth:      service.NewAuthService(db.Users(), db.Sessions(), time.Hour, opts),
		Expenses:  service.NewExpenseService(db.Categories(), db.Expenses(), db.Profiles(), opts),
		Dashboard: service.NewDashboardService(db.Users(), db.Expenses(), db.Profiles(), opts),
		Profiles:  service.NewProfileService(db.Profiles()),
		DB:        pinger,
		Location:  time.UTC,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testApp{db: db, pinger: pinger, server: ts}
}

// browser returns a client that keeps cookies and follows redirects.
func (a *testApp) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// noRedirect returns a client that stops at the first response.
func noRedirect(client *http.Client) *http.Client {
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}

type response struct {
	*http.Response
	body string
}

func (a *testApp) get(t *testing.T, client *http.Client, path string) response {
	t.Helper()
	resp, err := client.Get(a.server.URL + path)
	require.NoError(t, err)
	return readResponse(t, resp)
}

func (a *testApp) post(t *testing.T, client *http.Client, path string, form url.Values) response {
	t.Helper()
	resp, err := client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	return readResponse(t, resp)
}

func readResponse(t *testing.T, resp *http.Response) response {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{Response: resp, body: string(body)}
}

// signUp registers username and leaves client logged in.
func (a *testApp) signUp(t *testing.T, client *http.Client, username string) *models.User {
	t.Helper()
	resp := a.post(t, client, "/signup/", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/dashboard/", resp.Request.URL.Path)

	user, err := a.db.Users().GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return user
}

func (a *testApp) addCategory(t *testing.T, client *http.Client, user *models.User, name string) *models.Category {
	t.Helper()
	resp := a.post(t, client, "/category/", url.Values{"name": {name}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cat, err := a.db.Categories().GetByName(context.Background(), user.ID, name)
	require.NoError(t, err)
	return cat
}

func requireBodyContains(t *testing.T, resp response, parts ...string) {
	t.Helper()
	for _, p := range parts {
		require.True(t, strings.Contains(resp.body, p), "expected body to contain %q", p)
	}
}

var errDatabaseDown = errors.New("database down")
