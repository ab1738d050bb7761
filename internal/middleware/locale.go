package middleware

import (
	"net/http"
	"strings"

	"finitefield.org/hanko-store/internal/i18n"
)

// Locale resolves the active language for the request. A supported locale code
// as the first path segment wins and is stripped before routing; otherwise the
// session's remembered locale, then Accept-Language, decides.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := LocaleInfo{Lang: bundle.Fallback()}

			if seg, rest := splitLocalePrefix(r.URL.Path); seg != "" && bundle.IsSupported(seg) {
				info = LocaleInfo{Lang: seg, PathEmbedded: true}
				r.URL.Path = rest
				if r.URL.RawPath != "" {
					_, rawRest := splitLocalePrefix(r.URL.RawPath)
					r.URL.RawPath = rawRest
				}
			} else if s := GetSession(r); s.Locale != "" && bundle.IsSupported(s.Locale) {
				info.Lang = s.Locale
			} else {
				info.Lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}

			if s := GetSession(r); s.ID != "" && s.Locale != info.Lang {
				s.Locale = info.Lang
				s.MarkDirty()
			}

			w.Header().Set("Content-Language", info.Lang)
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), info)))
		})
	}
}

// Lang returns the resolved language for the request, default "ja".
func Lang(r *http.Request) string {
	if info := LocaleFromContext(r.Context()); info.Lang != "" {
		return info.Lang
	}
	return "ja"
}

// splitLocalePrefix returns the first path segment lowered and the remaining
// path (always starting with "/").
func splitLocalePrefix(path string) (string, string) {
	trimmed := strings.TrimPrefix(path, "/")
	seg, tail, _ := strings.Cut(trimmed, "/")
	if seg == "" {
		return "", path
	}
	rest := "/" + tail
	return strings.ToLower(seg), rest
}
