package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"

	"ovex/pkg/core"
)

var (
	// canonical encodes bodies with sorted keys and no whitespace so the
	// bytes sent are the bytes signed.
	canonical = sonic.Config{SortMapKeys: true}.Froze()
	// decoder keeps JSON numbers as json.Number so amounts do not lose precision.
	decoder = sonic.Config{UseNumber: true}.Froze()
)

// maxErrorText bounds the raw body quoted in an API error message.
const maxErrorText = 512

func encodeBody(params core.Params) ([]byte, error) {
	return canonical.Marshal(params.Compact())
}

// decodeBody decodes a 2xx body. Only 204 and 205 may be empty; an empty
// body on any other status is a protocol error.
func decodeBody(status int, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		if status == http.StatusNoContent || status == http.StatusResetContent {
			return nil, nil
		}
		return nil, core.NewProtocolError(status, "empty response body", body, nil)
	}

	var v any
	if err := decoder.Unmarshal(body, &v); err != nil {
		return nil, core.NewProtocolError(status, "decode response body", body, err)
	}
	return v, nil
}

// parseAPIError understands the error shapes the exchange uses:
//
//	{"error": {"code": 1001, "message": "invalid market"}}
//	{"errors": ["market.invalid"]}
//	{"error": "..."} or {"message": "...", "code": ...}
//
// Anything else becomes an API error carrying the raw text.
func parseAPIError(status int, body []byte) *core.Error {
	var v any
	if err := decoder.Unmarshal(body, &v); err == nil {
		if obj, ok := v.(map[string]any); ok {
			if code, msg, ok := errorFields(obj); ok {
				return core.NewAPIError(status, code, msg, body)
			}
		}
	}

	return core.NewAPIError(status, "", truncate(strings.TrimSpace(string(body)), maxErrorText), body)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return strings.ToValidUTF8(s, "\uFFFD")
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.ToValidUTF8(s[:cut], "\uFFFD") + "..."
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(headers map[string]string) time.Duration {
	v := strings.TrimSpace(headers["Retry-After"])
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func errorFields(obj map[string]any) (code, msg string, ok bool) {
	switch e := obj["error"].(type) {
	case map[string]any:
		return scalarString(e["code"]), scalarString(e["message"]), true
	case string:
		return scalarString(obj["code"]), e, true
	}

	if list, isList := obj["errors"].([]any); isList && len(list) > 0 {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, scalarString(item))
		}
		return parts[0], strings.Join(parts, ", "), true
	}

	if m, isString := obj["message"].(string); isString {
		return scalarString(obj["code"]), m, true
	}

	return "", "", false
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case nil:
		return ""
	default:
		return core.FormatParam(val)
	}
}
