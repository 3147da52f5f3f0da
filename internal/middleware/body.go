package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// BodyKey is the Echo context key holding the parsed JSON body.
const BodyKey = "body"

var (
	// ErrBodyTooLarge is returned when a JSON body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("request entity too large")

	// ErrInvalidJSON is returned when a JSON body cannot be parsed.
	ErrInvalidJSON = errors.New("invalid JSON payload")
)

// JSONBody parses JSON request bodies of at most limit bytes.
//
// Requests whose Content-Type is not JSON pass through untouched. The parsed
// value (an object or an array; an empty body parses to an empty object) is
// stored under BodyKey and the request body is replaced with the buffered
// bytes so handlers can still Bind it.
//
// Bodies larger than limit fail with ErrBodyTooLarge and malformed JSON with
// ErrInvalidJSON. Neither is a domain error, so the client gets the generic
// 500 and the cause is only logged. No later stage runs.
func (global *GlobalMiddlewares) JSONBody(limit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !isJSONContentType(req.Header.Get(echo.HeaderContentType)) {
				return next(c)
			}

			if req.ContentLength > limit {
				return errors.Wrapf(ErrBodyTooLarge, "content length %d exceeds limit %d", req.ContentLength, limit)
			}

			var raw []byte
			if req.Body != nil {
				var err error
				raw, err = io.ReadAll(io.LimitReader(req.Body, limit+1))
				if err != nil {
					return errors.Wrap(err, "read request body")
				}
			}

			if int64(len(raw)) > limit {
				return errors.Wrapf(ErrBodyTooLarge, "body exceeds limit %d", limit)
			}

			parsed, err := decodeJSON(raw)
			if err != nil {
				return errors.Wrapf(ErrInvalidJSON, "%v", err)
			}

			c.Set(BodyKey, parsed)
			setRequestBody(req, raw)

			return next(c)
		}
	}
}

// GetBody returns the parsed JSON body, or nil when JSONBody did not parse one.
func GetBody(c echo.Context) any {
	return c.Get(BodyKey)
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == echo.MIMEApplicationJSON || strings.HasSuffix(mediaType, "+json")
}

// decodeJSON accepts only a single object or array, like a strict JSON body parser.
func decodeJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}

	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, fmt.Errorf("body must be a JSON object or array")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level JSON value")
	}

	return parsed, nil
}

func setRequestBody(req *http.Request, raw []byte) {
	req.Body = io.NopCloser(bytes.NewReader(raw))
	req.ContentLength = int64(len(raw))
}
