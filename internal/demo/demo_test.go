package demo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/isomorph/internal/config"
	"github.com/roach88/isomorph/internal/dom/domtest"
	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/navigator"
	"github.com/roach88/isomorph/internal/render"
	"github.com/roach88/isomorph/internal/userdir"
	"github.com/roach88/isomorph/internal/value"
)

var testUsers = []userdir.User{
	{Login: "ada", Name: "Ada Lovelace", AvatarURL: "https://avatars.test/ada.png", Company: "Analytical Engines"},
	{Login: "grace", Name: "Grace Hopper", Company: "US Navy"},
}

func newApp(t *testing.T, users []userdir.User) *engine.Context {
	t.Helper()
	dir, err := userdir.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dir.Close() })
	require.NoError(t, dir.Seed(context.Background(), users))

	cfg, err := config.LoadFrom(nil)
	require.NoError(t, err)

	root, err := New(Options{
		Config:    cfg,
		Directory: dir,
		IDs:       engine.NewSequenceGenerator("demo"),
	})
	require.NoError(t, err)
	return root
}

func newServer(t *testing.T, root *engine.Context) *navigator.HTTP {
	t.Helper()
	static, err := render.NewStatic(render.StaticOptions{Template: Shell()})
	require.NoError(t, err)
	n, err := navigator.NewHTTP(root, static)
	require.NoError(t, err)
	return n
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDefaultRoutes(t *testing.T) {
	table, err := DefaultRoutes()
	require.NoError(t, err)

	var names []string
	for _, r := range table.Routes {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"index", "about", "users", "first", "user"}, names)
	assert.Len(t, table.Errors, 2)
}

func TestNewRequiresDirectory(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestPages(t *testing.T) {
	n := newServer(t, newApp(t, testUsers))

	tests := []struct {
		name     string
		target   string
		status   int
		contains []string
	}{
		{
			"index", "/", 200,
			[]string{"<title>Home</title>", "<h1>Home</h1>", `<a href="/about">About</a>`, `<a href="/users/first">`},
		},
		{
			"about", "/about", 200,
			[]string{"<title>About</title>", `<pre class="config">{&#34;env&#34;:&#34;dev&#34;,&#34;port&#34;:8080}</pre>`},
		},
		{
			"user", "/user/ada", 200,
			[]string{
				"<title>User ada</title>",
				`<img class="avatar" src="https://avatars.test/ada.png" alt="Ada Lovelace">`,
				"<h1>Ada Lovelace</h1>",
				"<dd>Analytical Engines</dd>",
			},
		},
		{
			"user lookup ignores case", "/user/GRACE", 200,
			[]string{"<title>User GRACE</title>", "<h1>Grace Hopper</h1>"},
		},
		{
			"unknown user", "/user/nobody", 200,
			[]string{"<h1>Unknown user</h1>", "<code>nobody</code>"},
		},
		{
			"users", "/users", 200,
			[]string{`<li><a href="/user/ada">Ada Lovelace</a></li><li><a href="/user/grace">Grace Hopper</a></li>`},
		},
		{
			"not found", "/missing/page", 404,
			[]string{"<title>Not Found</title>", "No content for <code>/missing/page</code>", `<a href="/">Home</a>`},
		},
		{
			"invalid login", "/user/a%20b", 500,
			[]string{"<title>Error</title>", `invalid login &#34;a b&#34;`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, n, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			for _, want := range tt.contains {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestAvatarURLSanitized(t *testing.T) {
	tests := []struct {
		name   string
		avatar string
		src    string
	}{
		{"https", "https://avatars.test/ada.png", "https://avatars.test/ada.png"},
		{"relative", "/static/ada.png", "/static/ada.png"},
		{"query escaped", "https://avatars.test/a.png?s=1&v=2", "https://avatars.test/a.png?s=1&amp;v=2"},
		{"javascript", "javascript:alert(1)", string(templ.FailedSanitizationURL)},
		{"javascript mixed case", "JavaScript:alert(1)", string(templ.FailedSanitizationURL)},
		{"data", "data:text/html,<script>alert(1)</script>", string(templ.FailedSanitizationURL)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newServer(t, newApp(t, []userdir.User{{Login: "ada", Name: "Ada", AvatarURL: tt.avatar}}))
			rec := get(t, n, "/user/ada")
			require.Equal(t, 200, rec.Code)
			assert.Contains(t, rec.Body.String(), `<img class="avatar" src="`+tt.src+`" alt="Ada">`)
		})
	}
}

func TestFirstUserRedirects(t *testing.T) {
	n := newServer(t, newApp(t, testUsers))

	rec := get(t, n, "/users/first")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/user/ada", rec.Header().Get("Location"))

	empty := newServer(t, newApp(t, nil))
	rec = get(t, empty, "/users/first")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestUserStorePhases(t *testing.T) {
	root := newApp(t, testUsers)
	c := root.GetChild()

	_, err := c.PerformAction(context.Background(), ActionLoadUser, value.Object{"userName": value.String("grace")})
	require.NoError(t, err)
	user := c.GetStore(StoreUser).ToObject()
	assert.Equal(t, value.String("Grace Hopper"), user["name"])
	assert.Equal(t, value.Bool(true), user["found"])
	assert.Equal(t, value.Bool(false), user["loading"])

	_, err = c.PerformAction(context.Background(), ActionLoadUser, value.Object{"userName": value.String("../x")})
	require.Error(t, err)
	user = c.GetStore(StoreUser).ToObject()
	assert.Equal(t, value.Bool(false), user["loading"])
	assert.Contains(t, value.Text(user["error"]), "invalid login")

	_, err = c.PerformAction(context.Background(), ActionLoadUser, value.Object{"userName": value.String("nobody")})
	require.NoError(t, err)
	user = c.GetStore(StoreUser).ToObject()
	assert.Equal(t, value.Bool(false), user["found"])
	assert.Equal(t, value.String(""), user["name"], "a miss clears the previous user")
	assert.Equal(t, value.Null{}, user["error"])

	name, _ := root.GetStore(StoreUser).Get("name")
	assert.Equal(t, value.String(""), name)
}

func TestServerToClientRoundTrip(t *testing.T) {
	server := newServer(t, newApp(t, testUsers))
	rec := get(t, server, "/user/ada")
	require.Equal(t, 200, rec.Code)

	w, err := domtest.NewWindow("http://demo.test/user/ada", rec.Body.String())
	require.NoError(t, err)

	client := newApp(t, testUsers)
	nav, err := navigator.NewDOM(w, client, nil)
	require.NoError(t, err)
	stop, err := nav.Start(context.Background(), navigator.StartOptions{})
	require.NoError(t, err)
	defer stop()

	w.Load()
	assert.Contains(t, w.Doc().ElementByID("app").InnerHTML(), "<h1>Ada Lovelace</h1>")

	assert.True(t, w.Click(w.Doc().Link("About")))
	assert.Equal(t, "http://demo.test/about", w.Location())
	assert.Equal(t, "About", w.Doc().Title())
	assert.Contains(t, w.Doc().ElementByID("app").InnerHTML(), "<h1>About</h1>")

	assert.True(t, w.Click(w.Doc().Link("Users")))
	assert.Contains(t, w.Doc().ElementByID("app").InnerHTML(), "Grace Hopper")

	assert.True(t, w.Click(w.Doc().Link("Grace Hopper")))
	assert.Equal(t, "User grace", w.Doc().Title())
	assert.Contains(t, w.Doc().ElementByID("app").InnerHTML(), "<dd>US Navy</dd>")

	require.True(t, w.Back())
	assert.Equal(t, "http://demo.test/users", w.Location())
}
