package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

type localeContextKey struct{}

const localeGinKey = "locale"

// Locale negotiates "he" or "en" from X-Locale, ?lang= or Accept-Language.
// defaultLocale wins when nothing matches.
func Locale(defaultLocale string) gin.HandlerFunc {
	tags := []language.Tag{language.Hebrew, language.English}
	if defaultLocale == "en" {
		tags = []language.Tag{language.English, language.Hebrew}
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		locale := negotiate(matcher, tags, c.GetHeader("X-Locale"), c.Query("lang"), c.GetHeader("Accept-Language"))
		c.Set(localeGinKey, locale)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), localeContextKey{}, locale))
		c.Next()
	}
}

func negotiate(matcher language.Matcher, tags []language.Tag, explicit, query, acceptLanguage string) string {
	for _, pref := range []string{explicit, query} {
		if pref == "" {
			continue
		}
		if tag, err := language.Parse(pref); err == nil {
			if _, idx, conf := matcher.Match(tag); conf != language.No {
				return baseCode(tags[idx])
			}
		}
	}

	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return baseCode(tags[0])
	}
	_, idx, _ := matcher.Match(prefs...)
	return baseCode(tags[idx])
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// LocaleFromContext returns the negotiated locale, "he" when unset.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return "he"
}
