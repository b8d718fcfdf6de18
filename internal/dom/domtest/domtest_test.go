package domtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/isomorph/internal/dom"
)

const page = `<!DOCTYPE html>
<html><head><title>Home</title></head>
<body><div id="app"><nav><a href="/about"><span id="label">About</span></a></nav></div>
<script>window.LITTLEST_ISOMORPH_CONTEXT = {"stores":{"test":{"foo":"bar"}}};</script>
</body></html>`

func newWindow(t *testing.T) *Window {
	t.Helper()
	w, err := NewWindow("http://example.com/", page)
	require.NoError(t, err)
	return w
}

func TestGlobals(t *testing.T) {
	w := newWindow(t)
	raw, ok := w.Global("LITTLEST_ISOMORPH_CONTEXT")
	require.True(t, ok)
	assert.Equal(t, `{"stores":{"test":{"foo":"bar"}}}`, raw)

	_, ok = w.Global("OTHER")
	assert.False(t, ok)
}

func TestTitle(t *testing.T) {
	w := newWindow(t)
	assert.Equal(t, "Home", w.Document().Title())

	w.Document().SetTitle("About")
	assert.Equal(t, "About", w.Document().Title())

	bare, err := NewWindow("http://example.com/", `<html><head></head><body></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, bare.Document().Title())
	bare.Document().SetTitle("Created")
	assert.Equal(t, "Created", bare.Document().Title())
}

func TestElements(t *testing.T) {
	w := newWindow(t)
	label := w.Document().ElementByID("label")
	require.NotNil(t, label)
	assert.Empty(t, label.Href())

	link := label.Parent()
	require.NotNil(t, link)
	assert.Equal(t, "/about", link.Href())

	assert.Nil(t, w.Document().ElementByID("missing"))
	assert.Equal(t, "/about", w.Doc().Link("About").Href())
}

func TestSetInnerHTML(t *testing.T) {
	w := newWindow(t)
	app := w.Document().ElementByID("app")
	require.NotNil(t, app)

	require.NoError(t, app.SetInnerHTML(`<h1>Hi</h1><p>there</p>`))
	assert.Equal(t, `<h1>Hi</h1><p>there</p>`, app.InnerHTML())
	assert.Nil(t, w.Document().ElementByID("label"))
	assert.Contains(t, w.Doc().Text(), "Hi")
}

func TestClickDispatch(t *testing.T) {
	w := newWindow(t)
	var got []*dom.Event
	remove := w.Document().AddEventListener(dom.EventClick, func(ev *dom.Event) {
		got = append(got, ev)
		ev.PreventDefault()
	})

	label := w.Document().ElementByID("label")
	assert.True(t, w.Click(label, WithCtrl))
	require.Len(t, got, 1)
	assert.True(t, got[0].CtrlKey)
	assert.True(t, got[0].Modified())
	assert.Equal(t, label, got[0].Target)

	remove()
	assert.False(t, w.Click(label))
	assert.Equal(t, 0, w.Doc().ListenerCount(dom.EventClick))
}

func TestHistory(t *testing.T) {
	w := newWindow(t)
	pops := 0
	w.AddEventListener(dom.EventPopState, func(*dom.Event) { pops++ })

	w.History().PushState("About", "/about")
	assert.Equal(t, "http://example.com/about", w.Location())
	w.History().PushState("User", "/user/ada")
	assert.Equal(t, 3, w.Hist().Len())

	require.True(t, w.Back())
	assert.Equal(t, "http://example.com/about", w.Location())
	assert.Equal(t, 1, pops)

	w.History().PushState("Other", "/other")
	assert.Equal(t, []Entry{
		{URL: "http://example.com/"},
		{Title: "About", URL: "http://example.com/about"},
		{Title: "Other", URL: "http://example.com/other"},
	}, w.Hist().Entries())

	require.True(t, w.Back())
	require.True(t, w.Back())
	assert.False(t, w.Back())
	assert.Equal(t, 3, pops)
}

func TestLoad(t *testing.T) {
	w := newWindow(t)
	loaded := false
	w.Document().AddEventListener(dom.EventDOMContentLoaded, func(*dom.Event) { loaded = true })
	w.Load()
	assert.True(t, loaded)
}
