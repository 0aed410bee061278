package middleware

import (
	"strings"

	"github.com/Ramsey-B/peony/pkg/context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

const (
	// HeaderUserID is the header key for user ID
	HeaderUserID = "X-User-ID"
	// QueryLocale overrides Accept-Language negotiation
	QueryLocale = "locale"
)

// Context copies request metadata, the negotiated locale and the session token into the request context.
func Context(supportedLocales []string, defaultLocale string, sessionCookie string) echo.MiddlewareFunc {
	tags := make([]language.Tag, 0, len(supportedLocales))
	for _, l := range supportedLocales {
		tags = append(tags, language.Make(l))
	}
	matcher := language.NewMatcher(tags)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())
			ctx = context.SetLocale(ctx, NegotiateLocale(matcher, supportedLocales, defaultLocale, c.QueryParam(QueryLocale), req.Header.Get("Accept-Language")))

			if token := sessionToken(c, sessionCookie); token != "" {
				ctx = context.SetSessionToken(ctx, token)
			}

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

// NegotiateLocale picks an explicit locale when supported, otherwise the best Accept-Language match.
func NegotiateLocale(matcher language.Matcher, supported []string, defaultLocale, explicit, acceptLanguage string) string {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	for _, l := range supported {
		if explicit != "" && explicit == l {
			return l
		}
	}

	if acceptLanguage == "" {
		return defaultLocale
	}

	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return defaultLocale
	}

	_, index, confidence := matcher.Match(prefs...)
	if confidence == language.No || index < 0 || index >= len(supported) {
		return defaultLocale
	}
	return supported[index]
}

func sessionToken(c echo.Context, cookieName string) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
