package desktop

import (
	"iter"
	"strings"
)

// List is a raw semicolon-delimited desktop-entry value kept as unparsed
// text. Tokenizing never builds a slice; each iteration walks the string
// again, so the sequence is restartable.
type List string

// Empty reports whether the list has no text at all.
func (l List) Empty() bool {
	return l == ""
}

// Tokens returns a restartable sequence over the non-empty tokens.
func (l List) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := string(l)
		for rest != "" {
			var token string
			if i := strings.IndexByte(rest, ';'); i >= 0 {
				token, rest = rest[:i], rest[i+1:]
			} else {
				token, rest = rest, ""
			}
			if token == "" {
				continue
			}
			if !yield(token) {
				return
			}
		}
	}
}

// ContainsAny reports whether any token equals one of the given values.
func (l List) ContainsAny(values []string) bool {
	for token := range l.Tokens() {
		for _, value := range values {
			if token == value {
				return true
			}
		}
	}
	return false
}
