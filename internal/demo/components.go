package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/roach88/isomorph/internal/routecfg"
	"github.com/roach88/isomorph/internal/value"
	"github.com/roach88/isomorph/internal/view"
)

// Registry returns the demo's components under the names routes.yaml
// uses. Page components are wrapped in the application layout.
func Registry() *routecfg.Registry {
	return routecfg.NewRegistry().
		Register("head", Head).
		Register("index", withLayout(Index)).
		Register("about", withLayout(About)).
		Register("users", withLayout(Users)).
		Register("user", withLayout(User)).
		Register("not-found", withLayout(NotFound)).
		Register("error", withLayout(Error))
}

// withLayout renders content as the children of Layout.
func withLayout(content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout.Render(templ.WithChildren(ctx, content), w)
	})
}

// Layout wraps its children with the footer navigation.
var Layout = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	children := templ.GetChildren(ctx)
	ctx = templ.ClearChildren(ctx)

	if _, err := io.WriteString(w, `<div class="app"><main class="content">`); err != nil {
		return err
	}
	if err := children.Render(ctx, w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w,
		`</main><footer><nav><a href="%s">Home</a> <a href="%s">About</a> <a href="%s">Users</a></nav></footer></div>`,
		templ.EscapeString(view.URL(ctx, "index", nil)),
		templ.EscapeString(view.URL(ctx, "about", nil)),
		templ.EscapeString(view.URL(ctx, "users", nil)),
	)
	return err
})

// Head sets the document title.
var Head = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	title := "isomorph"
	if route := view.RouteFrom(ctx); route != nil && route.DocumentTitle() != "" {
		title = route.DocumentTitle()
	}
	_, err := fmt.Fprintf(w, "<title>%s</title>", templ.EscapeString(title))
	return err
})

// Index is the home page.
var Index = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	_, err := fmt.Fprintf(w,
		`<h1>Home</h1><p>Rendered once on the server, then again in the browser from the same state.</p><p><a href="%s">Meet the first user</a></p>`,
		templ.EscapeString(view.URL(ctx, "first", nil)),
	)
	return err
})

// About shows the server settings held in the app Store.
var About = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	settings := value.Object{}
	if caps := view.CapabilitiesFrom(ctx); caps != nil {
		if s := caps.GetStore(StoreApp); s != nil {
			settings = s.ToObject()
		}
	}
	data, err := value.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, `<h1>About</h1><p>Server settings:</p><pre class="config">%s</pre>`,
		templ.EscapeString(string(data)))
	return err
})

// Users lists the directory.
var Users = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	if _, err := io.WriteString(w, `<h1>Users</h1>`); err != nil {
		return err
	}

	users, _ := view.Get(ctx, view.At(StoreDirectory, "users")).(value.Array)
	if len(users) == 0 {
		_, err := io.WriteString(w, `<p>No users yet.</p>`)
		return err
	}

	if _, err := io.WriteString(w, `<ul class="users">`); err != nil {
		return err
	}
	for _, u := range users {
		obj, _ := u.(value.Object)
		login := value.Text(obj["login"])
		if _, err := fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`,
			templ.EscapeString(view.URL(ctx, "user", map[string]string{"userName": login})),
			templ.EscapeString(value.Text(obj["name"])),
		); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</ul>`)
	return err
})

// User shows one user's profile.
var User = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	field := func(key string) string {
		return value.Text(view.Get(ctx, view.At(StoreUser, key)))
	}

	if found, _ := view.Get(ctx, view.At(StoreUser, "found")).(value.Bool); !found {
		_, err := fmt.Fprintf(w, `<h1>Unknown user</h1><p>No user named <code>%s</code>.</p>`,
			templ.EscapeString(view.Param(ctx, "userName")))
		return err
	}

	if _, err := io.WriteString(w, `<section class="user">`); err != nil {
		return err
	}
	if avatar := field("avatarUrl"); avatar != "" {
		if _, err := fmt.Fprintf(w, `<img class="avatar" src="%s" alt="%s">`,
			templ.EscapeString(string(templ.URL(avatar))), templ.EscapeString(field("name"))); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `<h1>%s</h1><p class="login">@%s</p>`,
		templ.EscapeString(field("name")), templ.EscapeString(field("login"))); err != nil {
		return err
	}
	if company := field("company"); company != "" {
		if _, err := fmt.Fprintf(w, `<dl><dt>Company</dt><dd>%s</dd></dl>`, templ.EscapeString(company)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</section>`)
	return err
})

// NotFound is the 404 page.
var NotFound = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	path := ""
	if route := view.RouteFrom(ctx); route != nil {
		path = route.Path
	}
	_, err := fmt.Fprintf(w, `<h1>Missing Content</h1><p>No content for <code>%s</code></p>`,
		templ.EscapeString(path))
	return err
})

// Error is the 500 page.
var Error = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	message := "Internal Server Error"
	if route := view.RouteFrom(ctx); route != nil && route.Error != "" {
		message = route.Error
	}
	_, err := fmt.Fprintf(w, `<h1>Something went wrong</h1><p class="error">%s</p>`,
		templ.EscapeString(message))
	return err
})
