package viewstate

import "strings"

// Key scopes all per-view state: pagination, sort, filter and selection.
// Two keys are equal when both fields are equal.
type Key struct {
	View string `json:"view"`
	Tab  string `json:"tab"`
}

// NewKey builds the key for a view and its active facet.
func NewKey(view, tab string) Key {
	return Key{View: view, Tab: tab}
}

func (k Key) String() string {
	if k.Tab == "" {
		return k.View
	}
	return k.View + "/" + k.Tab
}

// MarshalText lets keys index JSON objects.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	view, tab, _ := strings.Cut(string(b), "/")
	*k = Key{View: view, Tab: tab}
	return nil
}
