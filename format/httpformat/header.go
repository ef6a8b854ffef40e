package httpformat

import "strings"

// Header maps header names to the ordered list of values they were given.
//
// Names are stored exactly as they were received, a request carrying both
// "user-agent" and "User-Agent" has two distinct entries. Lookups with Values
// and Get try the exact spelling first, then fall back to a case-insensitive
// match since HTTP header names are case-insensitive.
type Header map[string][]string

// Add appends value to the list of values of the header name.
func (h Header) Add(name, value string) {
	h[name] = append(h[name], value)
}

// Set replaces all values of the header name with value, removing any other
// spelling of the name.
func (h Header) Set(name, value string) {
	h.Del(name)
	h[name] = []string{value}
}

// Del removes every spelling of the header name.
func (h Header) Del(name string) {
	for key := range h {
		if strings.EqualFold(key, name) {
			delete(h, key)
		}
	}
}

// Values returns the values of the header name.
func (h Header) Values(name string) []string {
	if values, ok := h[name]; ok {
		return values
	}
	for key, values := range h {
		if strings.EqualFold(key, name) {
			return values
		}
	}
	return nil
}

// Get returns the first value of the header name, and whether it existed.
func (h Header) Get(name string) (string, bool) {
	values := h.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}
