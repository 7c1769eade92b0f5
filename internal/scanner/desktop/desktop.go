package desktop

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// maxLine bounds a single Key=Value line; anything longer is not a sane
// desktop entry and aborts the parse for that file.
const maxLine = 256 * 1024

// Entry represents a parsed .desktop file. Name, Exec, TryExec and the
// boolean flags are parsed eagerly and never require re-reading the file.
// Categories, OnlyShowIn and NotShowIn are kept as raw semicolon-delimited
// text and tokenized lazily on demand.
type Entry struct {
	ID         string // identifier derived from the path relative to its applications dir
	Name       string // display name, required
	Exec       string // raw launch command
	TryExec    string // optional pre-check path
	Categories List   // raw category list
	OnlyShowIn List   // raw desktop-environment allow list
	NotShowIn  List   // raw desktop-environment deny list
	NoDisplay  bool
	Hidden     bool
	Terminal   bool
	Path       string // source file path
}

// NewBuffer allocates a line buffer suitable for ParseFile. One buffer is
// meant to be reused across many files by a single caller; it must not be
// shared between concurrent parses.
func NewBuffer() []byte {
	return make([]byte, 64*1024)
}

// ParseFile parses the [Desktop Entry] section of the file at path.
// Reading stops as soon as that section ends; trailing sections (actions,
// translations) are never consumed. buf is the caller-owned reusable line
// buffer from NewBuffer.
func ParseFile(path, id string, buf []byte) (*Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	entry := &Entry{
		ID:   id,
		Path: path,
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(buf, maxLine)

	var inEntry, sawEntry bool

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Section header
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inEntry = line == "[Desktop Entry]"
			if inEntry {
				sawEntry = true
			} else if sawEntry {
				// Left the entry section; nothing below is relevant
				break
			}
			continue
		}

		if !inEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			entry.Name = value
		case "Exec":
			entry.Exec = value
		case "TryExec":
			entry.TryExec = value
		case "Categories":
			entry.Categories = List(value)
		case "OnlyShowIn":
			entry.OnlyShowIn = List(value)
		case "NotShowIn":
			entry.NotShowIn = List(value)
		case "NoDisplay":
			entry.NoDisplay = parseBool(value)
		case "Hidden":
			entry.Hidden = parseBool(value)
		case "Terminal":
			entry.Terminal = parseBool(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !sawEntry {
		return nil, fmt.Errorf("no [Desktop Entry] section in %s", path)
	}
	if entry.Name == "" {
		return nil, fmt.Errorf("missing required Name in %s", path)
	}

	return entry, nil
}

// parseBool accepts only the literal token "true"; every other value,
// including absence, is false.
func parseBool(value string) bool {
	return value == "true"
}

// ExpandExec returns the Exec string with field codes resolved: %c becomes
// the entry name, %k the source file path, %% a literal percent. The file
// and URL placeholders (%f, %F, %u, %U) and the remaining codes are
// removed, since the launcher starts applications without arguments.
func (e *Entry) ExpandExec() string {
	s := e.Exec
	var result strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '%' && i+1 < len(s) {
			next := s[i+1]
			switch {
			case next == '%':
				result.WriteByte('%')
			case next == 'c':
				result.WriteString(e.Name)
			case next == 'k':
				result.WriteString(e.Path)
			case (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z'):
				// Unhandled code, drop it
			default:
				result.WriteByte(s[i])
				i++
				continue
			}
			i += 2
			continue
		}
		result.WriteByte(s[i])
		i++
	}
	return strings.Join(strings.Fields(result.String()), " ")
}
