// Package translate formats user visible messages in the host locale.
package translate

import (
	"log"
	"sync/atomic"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:generate go tool gotext -srclang=en-US update -out=catalog.go -lang=en-US github.com/ezrec/vm8/cpu github.com/ezrec/vm8/emulator

const DEFAULT_LOCALE = "en-US" // Used when the host reports no locale.

type selection struct {
	tag     language.Tag
	printer *message.Printer
}

var current atomic.Pointer[selection]

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("vm8: locale: %v", err)
	}

	SetLocale(locales...)
}

// SetLocale selects the message language from a list of preferred
// BCP 47 tags. An empty list selects DEFAULT_LOCALE.
func SetLocale(locales ...string) {
	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	tag := message.MatchLanguage(locales...)
	current.Store(&selection{
		tag:     tag,
		printer: message.NewPrinter(tag),
	})
}

// Locale returns the selected message language.
func Locale() language.Tag {
	return current.Load().tag
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return current.Load().printer.Sprintf(key, args...)
}
