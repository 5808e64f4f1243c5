package apiclient

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// errorMessage extracts a human-readable message from an error body. It
// returns "" when the body is empty, not JSON, or carries no message field.
func errorMessage(raw []byte) string {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}

	if detail, ok := fields["detail"]; ok {
		var s string
		if json.Unmarshal(detail, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string        `json:"msg"`
			Loc []interface{} `json:"loc"`
		}
		if json.Unmarshal(detail, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	for _, key := range []string{"message", "error"} {
		if v, ok := fields[key]; ok {
			var s string
			if json.Unmarshal(v, &s) == nil && s != "" {
				return s
			}
		}
	}
	return ""
}

// validateShape runs struct validation over out: a struct, a pointer to one,
// or a slice of either. Other kinds pass unchecked.
func (c *Client) validateShape(out interface{}) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		if v.CanAddr() {
			return c.validator.Struct(v.Addr().Interface())
		}
		return c.validator.Struct(v.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			item := v.Index(i)
			for item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
				if item.IsNil() {
					return fmt.Errorf("item %d is null", i)
				}
				item = item.Elem()
			}
			if item.Kind() != reflect.Struct {
				continue
			}
			if err := c.validator.Struct(item.Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

// RouteTemplate strips the query string and replaces numeric path segments
// with ":id" so metrics labels stay bounded.
func RouteTemplate(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
