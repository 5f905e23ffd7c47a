package rmcloud

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// QueryString encodes params as key=value pairs joined by '&'.
//
// Keys and values are percent-encoded with URI component rules, so a space
// becomes %20 rather than '+'. Values are rendered with fmt.Sprint. Keys are
// emitted in sorted order.
func QueryString(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, escapeComponent(k)+"="+escapeComponent(fmt.Sprint(params[k])))
	}
	return strings.Join(pairs, "&")
}

// componentUnescaper undoes the escapes url.QueryEscape applies beyond
// URI component rules. url.QueryEscape already encodes a literal '+' as
// %2B, so any '+' left in its output stands for a space.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escapeComponent escapes s for use as a query key or value.
func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
