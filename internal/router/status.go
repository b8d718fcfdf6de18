package router

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	statusOnce   sync.Once
	statusByName map[string]int
)

// StatusName returns the reason phrase for code as an identifier:
// 404 is "NotFound", 500 is "InternalServerError". Codes without a reason
// phrase render as their decimal form.
func StatusName(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return strconv.Itoa(code)
	}

	title := cases.Title(language.English, cases.NoLower).String(text)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, title)
}

// StatusCode resolves a status name, case-insensitively, to its code.
// Decimal strings are accepted as well.
func StatusCode(name string) (int, bool) {
	if code, err := strconv.Atoi(name); err == nil {
		return code, validStatus(code)
	}

	statusOnce.Do(func() {
		statusByName = make(map[string]int)
		for code := 100; code <= 599; code++ {
			if http.StatusText(code) != "" {
				statusByName[strings.ToLower(StatusName(code))] = code
			}
		}
	})

	code, ok := statusByName[strings.ToLower(name)]
	return code, ok
}

// StatusText returns the canonical reason phrase for code.
func StatusText(code int) string {
	return http.StatusText(code)
}

func validStatus(code int) bool {
	return code >= 100 && code <= 599
}
