package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	perr "github.com/iliebabcenco/big-collector/internal/platform/errors"
)

// maxJSONBody caps request bodies so a hostile client can't balloon memory
const maxJSONBody = 1 << 20 // 1 MiB

// DecodeJSON parses the request body into dst with unknown fields rejected
func DecodeJSON[T any](r *http.Request) (T, error) {
	var dst T
	if r.Body == nil {
		return dst, perr.JSONErrf("request body required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if err == io.EOF {
			return dst, perr.JSONErrf("request body required")
		}
		return dst, perr.JSONErrf("invalid JSON body: %s", sanitizeJSONErr(err))
	}
	// reject trailing garbage after the first value
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return dst, perr.JSONErrf("unexpected data after JSON body")
	}
	return dst, nil
}

// sanitizeJSONErr trims decoder noise so clients get a short, stable message
func sanitizeJSONErr(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, " into Go "); i > 0 {
		msg = msg[:i]
	}
	return msg
}

// JSONHandler adapts a pure JSON handler to a platform Handler
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := DecodeJSON[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}

// JSONHandlerNoBody calls fn without parsing a request body and wraps the result
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}
