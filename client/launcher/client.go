package launcher

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
)

// Application represents one listed entry
type Application struct {
	ID   int64
	Name string
}

// GroupInfo represents one category group with its entry count
type GroupInfo struct {
	Name  string
	Count int
}

// Client handles connection to the access-launcherd server
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
	socket string
}

const protoVer = "TXT01" // cmdlist protocol, text format, v01

// NewClient creates a new client and connects to the server
func NewClient() (*Client, error) {
	socketPath, err := getSocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get socket path: %w", err)
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket %s: %w", socketPath, err)
	}

	// Send header
	if _, err := conn.Write([]byte(protoVer)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send header: %w", err)
	}

	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		socket: socketPath,
	}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// FormatArgument formats an argument according to its type
func FormatArgument(arg string) string {
	arg = strings.TrimSpace(arg)

	// If starts with ", it's a string (keep prefix)
	if strings.HasPrefix(arg, `"`) {
		return arg
	}

	// Check if it's numeric (all digits)
	if _, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return arg
	}

	// Default: treat as string (add prefix)
	return `"` + arg
}

// SendCommand sends a command to the server
func (c *Client) SendCommand(cmdName string, args []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendCommand(cmdName, args)
}

func (c *Client) sendCommand(cmdName string, args []string) error {
	// Send arguments with type detection
	for _, arg := range args {
		formatted := FormatArgument(arg)
		if _, err := fmt.Fprintf(c.conn, "%s\n", formatted); err != nil {
			return fmt.Errorf("failed to send argument: %w", err)
		}
	}

	// Send command
	if _, err := fmt.Fprintf(c.conn, "%s\n", cmdName); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}

	return nil
}

// Rescan asks the daemon for a fresh scan and returns the entry count
func (c *Client) Rescan() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sendCommand("rescan", nil); err != nil {
		return 0, err
	}

	attrs, err := c.readAttrs()
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}
	if errMsg, ok := attrs["error"]; ok {
		return 0, fmt.Errorf("server error: %s", errMsg)
	}

	count, err := strconv.Atoi(attrs["count"])
	if err != nil {
		return 0, fmt.Errorf("invalid count in response: %w", err)
	}
	return count, nil
}

// Groups retrieves the non-empty category groups
func (c *Client) Groups() ([]GroupInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sendCommand("groups", nil); err != nil {
		return nil, err
	}

	attrs, lines, err := c.readListResponse("list-len")
	if err != nil {
		return nil, err
	}
	if errMsg, ok := attrs["error"]; ok {
		return nil, fmt.Errorf("server error: %s", errMsg)
	}

	var groups []GroupInfo
	for _, line := range lines {
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		count, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		groups = append(groups, GroupInfo{
			Name:  strings.Join(parts[1:], " "),
			Count: count,
		})
	}

	return groups, nil
}

// List retrieves the entries of one category group
func (c *Client) List(group string) ([]Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sendCommand("list", []string{`"` + group}); err != nil {
		return nil, err
	}

	attrs, lines, err := c.readListResponse("list-len")
	if err != nil {
		return nil, err
	}
	if errMsg, ok := attrs["error"]; ok {
		return nil, fmt.Errorf("server error: %s", errMsg)
	}

	var apps []Application
	for _, line := range lines {
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}
		apps = append(apps, Application{
			ID:   id,
			Name: strings.Join(parts[1:], " "),
		})
	}

	return apps, nil
}

// Argv retrieves the validated, tokenized launch command for an entry.
// The caller is the process-spawning collaborator; the daemon never
// executes anything itself.
func (c *Client) Argv(id int64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sendCommand("argv", []string{strconv.FormatInt(id, 10)}); err != nil {
		return nil, err
	}

	attrs, lines, err := c.readListResponse("argv-len")
	if err != nil {
		return nil, err
	}
	if errMsg, ok := attrs["error"]; ok {
		return nil, fmt.Errorf("server error: %s", errMsg)
	}

	return lines, nil
}

// Launched reports a launch of an entry and returns its new launch count
func (c *Client) Launched(id int64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sendCommand("launched", []string{strconv.FormatInt(id, 10)}); err != nil {
		return 0, err
	}

	attrs, err := c.readAttrs()
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}
	if errMsg, ok := attrs["error"]; ok {
		return 0, fmt.Errorf("server error: %s", errMsg)
	}

	count, err := strconv.ParseUint(attrs["launches"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid launches in response: %w", err)
	}
	return count, nil
}

// ResetFilters resets all filters
func (c *Client) ResetFilters() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sendCommand("0filters", nil); err != nil {
		return err
	}
	_, err := c.readAttrs()
	return err
}

// SetFilterName adds a name filter
func (c *Client) SetFilterName(query string) error {
	if query == "" {
		return c.ResetFilters()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sendCommand("+filter-name", []string{`"` + query}); err != nil {
		return err
	}
	_, err := c.readAttrs()
	return err
}

// ReadResponse reads one response and prints it to stdout, body included.
// Used by the CLI passthrough mode.
func (c *Client) ReadResponse() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	attrs, raw, err := c.readAttrsRaw()
	if err != nil {
		return err
	}
	fmt.Print(raw)

	lines, err := c.readBody(attrs)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// readAttrs reads the attribute block of one response, up to and including
// the terminating blank line.
func (c *Client) readAttrs() (map[string]string, error) {
	attrs, _, err := c.readAttrsRaw()
	return attrs, err
}

func (c *Client) readAttrsRaw() (map[string]string, string, error) {
	// Read header
	header := make([]byte, 5)
	if _, err := io.ReadFull(c.reader, header); err != nil {
		return nil, "", fmt.Errorf("failed to read response header: %w", err)
	}

	attrs := make(map[string]string)
	raw := strings.Builder{}
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, "", fmt.Errorf("read error: %w", err)
		}
		if line == "\n" {
			break
		}
		raw.WriteString(line)

		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) == 2 {
			attrs[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}

	return attrs, raw.String(), nil
}

// readBody reads the body lines announced by a length attribute, if any.
func (c *Client) readBody(attrs map[string]string) ([]string, error) {
	n := 0
	for _, key := range []string{"list-len", "argv-len"} {
		if v, ok := attrs[key]; ok {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s in response: %w", key, err)
			}
			n = parsed
			break
		}
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		lines = append(lines, strings.TrimSuffix(line, "\n"))
	}
	return lines, nil
}

func (c *Client) readListResponse(lenKey string) (map[string]string, []string, error) {
	attrs, err := c.readAttrs()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	lines, err := c.readBody(attrs)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := attrs[lenKey]; !ok && len(lines) == 0 {
		return attrs, nil, nil
	}
	return attrs, lines, nil
}
