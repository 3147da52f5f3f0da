package middleware

import (
	"encoding/json"
	"maps"
	"net/url"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// XSSSanitizer cleans request input before route logic sees it: query
// keys and values, path parameter values and the parsed JSON body. The
// sanitized body is written back into the request body as well.
func (global *GlobalMiddlewares) XSSSanitizer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if req.URL.RawQuery != "" {
				query := req.URL.Query()
				clean := make(url.Values, len(query))
				// Keys that sanitize to the same name keep all their values.
				for _, key := range slices.Sorted(maps.Keys(query)) {
					cleanKey := global.sanitizer.String(key)
					clean[cleanKey] = append(clean[cleanKey], global.sanitizer.Strings(query[key])...)
				}
				req.URL.RawQuery = clean.Encode()
			}

			if values := c.ParamValues(); len(values) > 0 {
				cleaned := global.sanitizer.Strings(append([]string(nil), values...))
				c.SetParamValues(cleaned...)
			}

			if body := GetBody(c); body != nil {
				clean := global.sanitizer.Value(body)

				raw, err := json.Marshal(clean)
				if err != nil {
					return errors.Wrap(err, "encode sanitized body")
				}

				c.Set(BodyKey, clean)
				setRequestBody(req, raw)
			}

			return next(c)
		}
	}
}
