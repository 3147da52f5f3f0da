package middleware

import (
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// CookiesKey is the Echo context key holding the parsed cookie map.
const CookiesKey = "cookies"

// Cookies parses the Cookie header into a map[string]string stored under
// CookiesKey. Values are percent-decoded when possible and the first
// occurrence of a name wins. Requests without cookies get an empty map.
//
// The header is split by hand rather than through http.Request.Cookies,
// which drops values holding non-ASCII bytes or inner quotes.
func Cookies() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(CookiesKey, parseCookieHeaders(c.Request().Header.Values("Cookie")))

			return next(c)
		}
	}
}

// GetCookies returns the parsed cookies, or nil when Cookies did not run.
func GetCookies(c echo.Context) map[string]string {
	if cookies, ok := c.Get(CookiesKey).(map[string]string); ok {
		return cookies
	}
	return nil
}

func parseCookieHeaders(headers []string) map[string]string {
	parsed := make(map[string]string)

	for _, header := range headers {
		for _, pair := range strings.Split(header, ";") {
			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}

			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, exists := parsed[name]; exists {
				continue
			}

			value = strings.TrimSpace(value)
			if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
				value = value[1 : len(value)-1]
			}

			parsed[name] = decodeCookieValue(value)
		}
	}

	return parsed
}

func decodeCookieValue(value string) string {
	if !strings.Contains(value, "%") {
		return value
	}

	decoded, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}
