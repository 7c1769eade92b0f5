package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Boo15mario/access-launcher/internal/config"
	"github.com/Boo15mario/access-launcher/internal/launchstore"
	"github.com/Boo15mario/access-launcher/internal/scanner"
	"github.com/Boo15mario/access-launcher/internal/scanner/desktop"
	"github.com/Boo15mario/access-launcher/internal/scanner/execcheck"
	"github.com/Boo15mario/access-launcher/parser"
)

// Server handles Unix socket connections and serves the current scan result
type Server struct {
	listener net.Listener
	scanner  *scanner.Scanner
	store    *launchstore.Store
	result   *scanner.Result
	running  bool
	mu       sync.RWMutex
	filters  *Filters
}

// Filters stores current filter settings
type Filters struct {
	mu          sync.RWMutex
	nameFilters []string
}

// NewServer creates a new server instance
func NewServer(store *launchstore.Store) (*Server, error) {
	cfg := config.Get()
	socketPath := cfg.UnixSocket()

	// Create directory if needed
	socketDir := filepath.Dir(socketPath)
	if err := os.MkdirAll(socketDir, 0755); err != nil {
		return nil, err
	}

	// Remove existing socket if it exists
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, err
	}

	return &Server{
		listener: listener,
		scanner:  scanner.NewScanner(),
		store:    store,
		filters:  &Filters{},
	}, nil
}

// Rescan runs a fresh scan over the configured directories, replaces the
// current result and returns the entry count. The previous result is
// discarded whole; there is no incremental update path.
func (s *Server) Rescan() int {
	cfg := config.Get()
	result := s.scanner.Scan(cfg.ApplicationDirs(), cfg.CurrentDesktops())

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()

	return result.Len()
}

// Result returns the current scan result, nil before the first scan
func (s *Server) Result() *scanner.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.RLock()
			running := s.running
			s.mu.RUnlock()
			if !running {
				return nil
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// Stop stops the server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return s.listener.Close()
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	log.Printf("[DEBUG] New connection accepted")

	p, err := parser.NewParser(conn)
	if err != nil {
		log.Printf("[ERROR] Failed to create parser: %v", err)
		s.writeError(conn, "parser", "invalid header", err.Error())
		return
	}

	for {
		cmd, err := p.ParseCommand()
		if err == io.EOF {
			log.Printf("[DEBUG] Connection closed by client")
			break
		}
		if err != nil {
			log.Printf("[ERROR] Parse error: %v", err)
			s.writeError(conn, "parser", "parse error", err.Error())
			continue
		}

		log.Printf("[DEBUG] Executing command: %s with %d args", cmd.Name, len(cmd.Args))
		s.executeCommand(conn, cmd)
	}
}

func (s *Server) executeCommand(conn net.Conn, cmd *parser.Command) {
	switch cmd.Name {
	case "rescan":
		s.handleRescan(conn)
	case "groups":
		s.handleGroups(conn)
	case "list":
		s.handleList(conn, cmd)
	case "entry":
		s.handleEntry(conn, cmd)
	case "argv":
		s.handleArgv(conn, cmd)
	case "launched":
		s.handleLaunched(conn, cmd)
	case "+filter-name":
		s.handleFilterName(conn, cmd)
	case "0filters":
		s.handleResetFilters(conn)
	default:
		s.writeError(conn, cmd.Name, "unknown command", "Command not recognized")
	}
}

func (s *Server) handleRescan(conn net.Conn) {
	log.Printf("[DEBUG] Handling rescan command")

	count := s.Rescan()
	log.Printf("[DEBUG] Scan finished with %d entries", count)

	attrs := fmt.Sprintf("cmd: rescan\nstatus: 0\ncount: %d\n\n", count)
	s.writeResponse(conn, attrs)
}

func (s *Server) handleGroups(conn net.Conn) {
	log.Printf("[DEBUG] Handling groups command")

	result := s.Result()
	if result == nil {
		s.writeError(conn, "groups", "no scan", "No scan has completed yet")
		return
	}

	groups := result.Groups()
	attrs := fmt.Sprintf("list-len: %d\n\n", len(groups))
	body := strings.Builder{}
	for _, group := range groups {
		body.WriteString(fmt.Sprintf("%d %s\n", len(result.Group(group)), group))
	}

	s.writeResponse(conn, attrs+body.String())
	log.Printf("[DEBUG] Groups response sent")
}

func (s *Server) handleList(conn net.Conn, cmd *parser.Command) {
	log.Printf("[DEBUG] Handling list command")

	if len(cmd.Args) == 0 || cmd.Args[0].Type != parser.TypeString {
		log.Printf("[ERROR] List command missing group parameter")
		s.writeError(conn, "list", "missing group", "list command requires a group name parameter")
		return
	}

	result := s.Result()
	if result == nil {
		s.writeError(conn, "list", "no scan", "No scan has completed yet")
		return
	}

	group, ok := scanner.GroupByName(cmd.Args[0].Str)
	if !ok {
		log.Printf("[ERROR] Unknown group: %s", cmd.Args[0].Str)
		s.writeError(conn, "list", "unknown group", "No such category group")
		return
	}

	s.filters.mu.RLock()
	nameFilters := s.filters.nameFilters
	s.filters.mu.RUnlock()

	limit := config.Get().ListLimit()
	body := strings.Builder{}
	count := 0
	for _, entry := range result.Group(group) {
		if !matchesNameFilters(entry.Name, nameFilters) {
			continue
		}
		if count >= limit {
			break
		}
		body.WriteString(fmt.Sprintf("%d %s\n", result.Handle(entry), entry.Name))
		count++
	}

	attrs := fmt.Sprintf("list-len: %d\ngroup: %s\n\n", count, group)
	s.writeResponse(conn, attrs+body.String())
	log.Printf("[DEBUG] List response sent (%d entries)", count)
}

func (s *Server) handleEntry(conn net.Conn, cmd *parser.Command) {
	log.Printf("[DEBUG] Handling entry command")

	entry, ok := s.entryArg(conn, "entry", cmd)
	if !ok {
		return
	}

	group := scanner.Classify(entry.Categories)
	counts := s.store.Counts([]string{entry.ID})

	attrs := fmt.Sprintf("cmd: entry\nstatus: 0\nid: %s\nname: %s\ngroup: %s\nterminal: %t\nexec: %s\nlaunches: %d\n\n",
		entry.ID, entry.Name, group, entry.Terminal, entry.Exec, counts[entry.ID])
	s.writeResponse(conn, attrs)
}

func (s *Server) handleArgv(conn net.Conn, cmd *parser.Command) {
	log.Printf("[DEBUG] Handling argv command")

	entry, ok := s.entryArg(conn, "argv", cmd)
	if !ok {
		return
	}

	expanded := entry.ExpandExec()
	var argv []string
	if entry.Terminal {
		// Same wrapping the launcher UI would use: term -e <command>
		argv = []string{config.Get().Terminal(), "-e", expanded}
	} else {
		var err error
		argv, err = execcheck.Split(expanded)
		if err != nil {
			log.Printf("[ERROR] Failed to tokenize exec for %s: %v", entry.ID, err)
			s.writeError(conn, "argv", "invalid exec", err.Error())
			return
		}
	}
	if len(argv) == 0 {
		log.Printf("[ERROR] Empty exec command for %s", entry.ID)
		s.writeError(conn, "argv", "invalid exec", "Empty exec command")
		return
	}

	attrs := fmt.Sprintf("cmd: argv\nstatus: 0\nargv-len: %d\n\n", len(argv))
	body := strings.Builder{}
	for _, arg := range argv {
		body.WriteString(arg)
		body.WriteString("\n")
	}
	s.writeResponse(conn, attrs+body.String())
	log.Printf("[DEBUG] Argv response sent")
}

func (s *Server) handleLaunched(conn net.Conn, cmd *parser.Command) {
	log.Printf("[DEBUG] Handling launched command")

	entry, ok := s.entryArg(conn, "launched", cmd)
	if !ok {
		return
	}

	count, err := s.store.Record(entry.ID)
	if err != nil {
		log.Printf("[ERROR] Failed to record launch for %s: %v", entry.ID, err)
		s.writeError(conn, "launched", "store error", err.Error())
		return
	}

	log.Printf("[DEBUG] Recorded launch %d for %s", count, entry.ID)
	attrs := fmt.Sprintf("cmd: launched\nstatus: 0\nid: %s\nlaunches: %d\n\n", entry.ID, count)
	s.writeResponse(conn, attrs)
}

func (s *Server) handleFilterName(conn net.Conn, cmd *parser.Command) {
	log.Printf("[DEBUG] Handling filter-name command")
	s.filters.mu.Lock()
	defer s.filters.mu.Unlock()

	for _, arg := range cmd.Args {
		if arg.Type == parser.TypeString && arg.Str != "" {
			s.filters.nameFilters = append(s.filters.nameFilters, arg.Str)
			log.Printf("[DEBUG] Added name filter: %s", arg.Str)
		}
	}

	// Send success response
	attrs := "cmd: +filter-name\nstatus: 0\n\n"
	s.writeResponse(conn, attrs)
}

func (s *Server) handleResetFilters(conn net.Conn) {
	log.Printf("[DEBUG] Resetting all filters")
	s.filters.mu.Lock()
	defer s.filters.mu.Unlock()
	s.filters.nameFilters = []string{}

	// Send success response
	attrs := "cmd: 0filters\nstatus: 0\n\n"
	s.writeResponse(conn, attrs)
}

// entryArg resolves the integer handle argument shared by the entry, argv
// and launched commands.
func (s *Server) entryArg(conn net.Conn, cmdName string, cmd *parser.Command) (*desktop.Entry, bool) {
	if len(cmd.Args) == 0 || cmd.Args[0].Type != parser.TypeInt {
		log.Printf("[ERROR] %s command missing id parameter", cmdName)
		s.writeError(conn, cmdName, "missing id", cmdName+" command requires an id parameter")
		return nil, false
	}

	result := s.Result()
	if result == nil {
		s.writeError(conn, cmdName, "no scan", "No scan has completed yet")
		return nil, false
	}

	entry, ok := result.Get(cmd.Args[0].Int)
	if !ok {
		log.Printf("[ERROR] Handle %d not found", cmd.Args[0].Int)
		s.writeError(conn, cmdName, "id not found", "Requested entry handle not found in current scan")
		return nil, false
	}

	return entry, true
}

func matchesNameFilters(name string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	searchText := strings.ToLower(name)
	for _, filter := range filters {
		if strings.Contains(searchText, strings.ToLower(filter)) {
			return true
		}
	}
	return false
}

// writeResponse writes a response with TXT01 header
func (s *Server) writeResponse(conn net.Conn, response string) {
	log.Printf("[DEBUG] Writing response (length: %d bytes)", len(response))
	header := []byte("TXT01")
	n, err := conn.Write(header)
	if err != nil {
		log.Printf("[ERROR] Failed to write header: %v", err)
		return
	}
	if n != len(header) {
		log.Printf("[ERROR] Partial header write: %d/%d bytes", n, len(header))
		return
	}

	n, err = conn.Write([]byte(response))
	if err != nil {
		log.Printf("[ERROR] Failed to write response body: %v", err)
		return
	}
	log.Printf("[DEBUG] Response written successfully: %d bytes", n)
}

func (s *Server) writeError(conn net.Conn, cmd, errType, desc string) {
	log.Printf("[ERROR] Writing error response: cmd=%s, type=%s, desc=%s", cmd, errType, desc)
	errorMsg := fmt.Sprintf("error-cmd: %s\nerror: %s\ndesc: %s\n\n", cmd, errType, desc)
	s.writeResponse(conn, errorMsg)
}
