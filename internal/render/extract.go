package render

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/roach88/isomorph/internal/engine"
)

// ErrNoSnapshot is returned by ExtractSnapshot when the markup carries no
// snapshot for the requested global.
var ErrNoSnapshot = errors.New("no snapshot in document")

// ExtractSnapshot finds the `window.<global> = ...;` script in server
// rendered markup and decodes its snapshot.
func ExtractSnapshot(markup, global string) (*engine.Snapshot, error) {
	if global == "" {
		global = DefaultGlobalName
	}
	prefix := "window." + global + " = "

	z := html.NewTokenizer(strings.NewReader(markup))
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil, ErrNoSnapshot
			}
			return nil, z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = atom.Lookup(name) == atom.Script
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if !strings.HasPrefix(text, prefix) {
				continue
			}
			payload := strings.TrimSuffix(strings.TrimPrefix(text, prefix), ";")
			return engine.DecodeSnapshot([]byte(payload))
		}
	}
}
