package core

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Params holds request parameters. A nil value, or a typed nil pointer,
// marks the parameter as absent: it is never serialized.
type Params map[string]any

// Compact returns a copy of p without absent entries.
func (p Params) Compact() Params {
	out := make(Params, len(p))
	for k, v := range p {
		if isAbsent(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// Values formats the non-nil params as url.Values.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for k, v := range p {
		if isAbsent(v) {
			continue
		}
		values.Set(k, FormatParam(v))
	}
	return values
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// FormatParam renders a scalar parameter the way the exchange expects it
// in a query string.
func FormatParam(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case *apd.Decimal:
		return val.Text('f')
	case apd.Decimal:
		return val.Text('f')
	case *string:
		return *val
	case *int:
		return strconv.Itoa(*val)
	case *int64:
		return strconv.FormatInt(*val, 10)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Request is the per-call description of an API request. It is built by an
// endpoint method, consumed once by the client and not retained.
type Request struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Params      Params `json:"params,omitempty"`
	RequireAuth bool   `json:"require_auth"`
}

// NewRequest creates a request for method and path. The path is relative
// to the API base URL and must start with "/".
func NewRequest(method, path string) *Request {
	return &Request{
		Method: strings.ToUpper(method),
		Path:   path,
		Params: make(Params),
	}
}

// SetParam sets a single parameter. A nil value leaves the parameter absent.
func (r *Request) SetParam(key string, value any) *Request {
	if r.Params == nil {
		r.Params = make(Params)
	}
	r.Params[key] = value
	return r
}

// SetParams copies params into the request.
func (r *Request) SetParams(params Params) *Request {
	if r.Params == nil {
		r.Params = make(Params)
	}
	maps.Copy(r.Params, params)
	return r
}

// SetRequireAuth marks the request as needing a signature.
func (r *Request) SetRequireAuth(require bool) *Request {
	r.RequireAuth = require
	return r
}

// HasBody reports whether params travel in a JSON body rather than the query string.
func (r *Request) HasBody() bool {
	return r.Method == http.MethodPost || r.Method == http.MethodPut
}

// Validate checks the method and path. prefix is the path component of the
// base URL (for example "/api/v2"), which the path must not repeat.
func (r *Request) Validate(prefix string) error {
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return NewValidationError(ErrCodeInvalidMethod, fmt.Sprintf("unsupported http method %q", r.Method), nil)
	}

	if !strings.HasPrefix(r.Path, "/") {
		return NewValidationError(ErrCodeInvalidPath, fmt.Sprintf("path %q must start with /", r.Path), nil)
	}
	if strings.ContainsAny(r.Path, "?#") {
		return NewValidationError(ErrCodeInvalidPath, fmt.Sprintf("path %q must not carry a query or fragment", r.Path), nil)
	}
	if strings.Contains(r.Path, "://") {
		return NewValidationError(ErrCodeInvalidPath, fmt.Sprintf("path %q must be relative to the base url", r.Path), nil)
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix != "" && (r.Path == prefix || strings.HasPrefix(r.Path, prefix+"/")) {
		return NewValidationError(ErrCodeInvalidPath, fmt.Sprintf("path %q must not include the %s prefix", r.Path, prefix), nil)
	}
	return nil
}
