package router

import (
	"log/slog"
	"net/url"
	"strings"
)

// FormatPath builds the canonical path for a route: the name, followed by
// "?" and the percent-encoded params sorted by key when there are any.
func FormatPath(name string, params map[string]string) string {
	if len(params) == 0 {
		return name
	}
	q := make(url.Values, len(params))
	for k, v := range params {
		q.Set(k, v)
	}
	return name + "?" + q.Encode()
}

// ParsePath splits a fragment into route name and params. A leading "#"
// is ignored. Repeated keys keep their last value; malformed pairs are
// skipped.
func ParsePath(fragment string) (string, map[string]string) {
	fragment = strings.TrimPrefix(fragment, "#")
	name, query, found := strings.Cut(fragment, "?")
	params := map[string]string{}
	if !found || query == "" {
		return name, params
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		slog.Debug("malformed query in fragment", "fragment", fragment, "error", err)
	}
	for k, vs := range values {
		if len(vs) > 0 {
			params[k] = vs[len(vs)-1]
		}
	}
	return name, params
}
