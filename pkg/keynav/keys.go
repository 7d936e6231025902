// Package keynav holds the keyboard navigation rules for paged tables and
// grouped grids. Everything here is pure: callers apply the results to their
// own stores.
package keynav

// Key is a navigation intent decoded from a terminal key press.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyEnter
	KeyEscape
)

var keyNames = map[Key]string{
	KeyNone:     "none",
	KeyUp:       "up",
	KeyDown:     "down",
	KeyLeft:     "left",
	KeyRight:    "right",
	KeyPageUp:   "pgup",
	KeyPageDown: "pgdown",
	KeyHome:     "home",
	KeyEnd:      "end",
	KeyEnter:    "enter",
	KeyEscape:   "esc",
}

func (k Key) String() string {
	if s, ok := keyNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKey maps the string form of a bubbletea key message, vim motions
// included, to a Key. Unknown input yields KeyNone.
func ParseKey(s string) Key {
	switch s {
	case "up", "k":
		return KeyUp
	case "down", "j":
		return KeyDown
	case "left", "h":
		return KeyLeft
	case "right", "l":
		return KeyRight
	case "pgup", "ctrl+b":
		return KeyPageUp
	case "pgdown", "ctrl+f":
		return KeyPageDown
	case "home", "g":
		return KeyHome
	case "end", "G":
		return KeyEnd
	case "enter":
		return KeyEnter
	case "esc":
		return KeyEscape
	}
	return KeyNone
}
