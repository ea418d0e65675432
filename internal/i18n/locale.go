package i18n

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/Mr-Shodiyorov/admin-page/internal/events"
	"golang.org/x/text/language"
)

// Locale is the single owner of the current UI language. SetLocale is the
// only way to change it.
type Locale struct {
	current language.Tag
	matcher language.Matcher
	bus     *events.EventBus[any]
	mutex   sync.RWMutex
}

func NewLocale(initial string, bus *events.EventBus[any]) (*Locale, error) {
	l := &Locale{matcher: language.NewMatcher(Supported), bus: bus}
	tag, err := l.match(initial)
	if err != nil {
		return nil, err
	}
	l.current = tag
	return l, nil
}

func (l *Locale) Current() language.Tag {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.current
}

// SetLocale switches the UI language and announces the change.
func (l *Locale) SetLocale(lang string) (language.Tag, error) {
	tag, err := l.match(lang)
	if err != nil {
		return language.Und, err
	}

	l.mutex.Lock()
	changed := tag != l.current
	l.current = tag
	l.mutex.Unlock()

	if changed {
		l.bus.Publish(events.LocaleChanged{Locale: tag.String()})
	}
	return tag, nil
}

// Negotiate picks the language for one request: the lang query parameter,
// then Accept-Language, then the current language.
func (l *Locale) Negotiate(r *http.Request) language.Tag {
	if tag, err := l.match(r.URL.Query().Get("lang")); err == nil {
		return tag
	}

	if header := r.Header.Get("Accept-Language"); header != "" {
		if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
			if _, index, conf := l.matcher.Match(tags...); conf != language.No {
				return Supported[index]
			}
		}
	}

	return l.Current()
}

func (l *Locale) match(lang string) (language.Tag, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Und, fmt.Errorf("unknown language %q: %w", lang, err)
	}
	_, index, conf := l.matcher.Match(tag)
	if conf == language.No {
		return language.Und, fmt.Errorf("unsupported language %q", lang)
	}
	return Supported[index], nil
}
