package server

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/Boo15mario/access-launcher/internal/launchstore"
	"github.com/Boo15mario/access-launcher/internal/scanner"
	"github.com/Boo15mario/access-launcher/parser"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server commands", func() {
	var (
		srv          *Server
		store        *launchstore.Store
		testCacheDir string
		appsDir      string
		responseBuf  bytes.Buffer
		response     string
	)

	writeDesktopFile := func(name, content string) {
		err := os.WriteFile(filepath.Join(appsDir, name), []byte(content), 0644)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		testCacheDir, err = os.MkdirTemp("", "access-launcher-server-test-*")
		Expect(err).NotTo(HaveOccurred())

		store, err = launchstore.NewStoreWithCacheDir(testCacheDir)
		Expect(err).NotTo(HaveOccurred())

		appsDir = filepath.Join(testCacheDir, "applications")
		Expect(os.MkdirAll(appsDir, 0755)).To(Succeed())

		writeDesktopFile("editor.desktop", `[Desktop Entry]
Name=Alpha Editor
Exec=sh -c true %f
Categories=TextEditor;
`)
		writeDesktopFile("browser.desktop", `[Desktop Entry]
Name=Web Browser
Exec=sh
Categories=Network;WebBrowser;
`)
		writeDesktopFile("console.desktop", `[Desktop Entry]
Name=Console
Exec=sh
Terminal=true
Categories=TerminalEmulator;
`)

		srv = &Server{
			scanner: scanner.NewScanner(),
			store:   store,
			filters: &Filters{},
		}
		srv.result = srv.scanner.Scan([]string{appsDir}, nil)
		Expect(srv.result.Len()).To(Equal(3))

		responseBuf.Reset()
	})

	AfterEach(func() {
		if store != nil {
			Expect(store.Close()).To(Succeed())
		}
		if testCacheDir != "" {
			Expect(os.RemoveAll(testCacheDir)).To(Succeed())
		}
	})

	execute := func(name string, args ...parser.Value) {
		conn := &mockConn{writeBuf: &responseBuf}
		srv.executeCommand(conn, &parser.Command{Name: name, Args: args})
		response = responseBuf.String()
	}

	stringArg := func(s string) parser.Value {
		return parser.Value{Type: parser.TypeString, Str: s}
	}
	intArg := func(i int64) parser.Value {
		return parser.Value{Type: parser.TypeInt, Int: i}
	}

	Describe("groups", func() {
		It("should list non-empty groups in display order with counts", func() {
			execute("groups")

			Expect(response).To(ContainSubstring("list-len: 3"))

			terminal := bytes.Index([]byte(response), []byte("1 Terminal Emulator"))
			internet := bytes.Index([]byte(response), []byte("1 Internet"))
			editors := bytes.Index([]byte(response), []byte("1 Text Editors"))
			Expect(terminal).To(BeNumerically(">", -1))
			Expect(internet).To(BeNumerically(">", terminal))
			Expect(editors).To(BeNumerically(">", internet))
		})

		It("should report no scan before the first scan", func() {
			srv.result = nil
			execute("groups")

			Expect(response).To(ContainSubstring("error-cmd: groups"))
			Expect(response).To(ContainSubstring("no scan"))
		})
	})

	Describe("list", func() {
		It("should list the entries of a group with their handles", func() {
			execute("list", stringArg("Text Editors"))

			Expect(response).To(ContainSubstring("list-len: 1"))
			Expect(response).To(ContainSubstring("group: Text Editors"))
			Expect(response).To(ContainSubstring("1 Alpha Editor"))
		})

		It("should reject an unknown group", func() {
			execute("list", stringArg("Nonsense"))

			Expect(response).To(ContainSubstring("error-cmd: list"))
			Expect(response).To(ContainSubstring("unknown group"))
		})

		It("should reject a missing group argument", func() {
			execute("list")

			Expect(response).To(ContainSubstring("error-cmd: list"))
			Expect(response).To(ContainSubstring("missing group"))
		})
	})

	Describe("entry", func() {
		It("should describe an entry by its handle", func() {
			// Handles follow the name-sorted order: Alpha Editor is 1
			execute("entry", intArg(1))

			Expect(response).To(ContainSubstring("cmd: entry"))
			Expect(response).To(ContainSubstring("status: 0"))
			Expect(response).To(ContainSubstring("id: editor"))
			Expect(response).To(ContainSubstring("name: Alpha Editor"))
			Expect(response).To(ContainSubstring("group: Text Editors"))
			Expect(response).To(ContainSubstring("terminal: false"))
			Expect(response).To(ContainSubstring("launches: 0"))
		})

		It("should reject an unknown handle", func() {
			execute("entry", intArg(42))

			Expect(response).To(ContainSubstring("error-cmd: entry"))
			Expect(response).To(ContainSubstring("id not found"))
		})

		It("should reject a missing handle argument", func() {
			execute("entry")

			Expect(response).To(ContainSubstring("error-cmd: entry"))
			Expect(response).To(ContainSubstring("missing id"))
		})
	})

	Describe("argv", func() {
		It("should return the tokenized command with placeholders dropped", func() {
			execute("argv", intArg(1))

			Expect(response).To(ContainSubstring("cmd: argv"))
			Expect(response).To(ContainSubstring("argv-len: 3"))
			Expect(response).To(ContainSubstring("sh\n-c\ntrue\n"))
			Expect(response).NotTo(ContainSubstring("%f"))
		})

		It("should wrap terminal entries in the configured emulator", func() {
			// Console sorts second
			execute("argv", intArg(2))

			Expect(response).To(ContainSubstring("argv-len: 3"))
			Expect(response).To(ContainSubstring("\n-e\nsh\n"))
		})
	})

	Describe("launched", func() {
		It("should record launches and return the running count", func() {
			execute("launched", intArg(1))
			Expect(response).To(ContainSubstring("cmd: launched"))
			Expect(response).To(ContainSubstring("id: editor"))
			Expect(response).To(ContainSubstring("launches: 1"))

			responseBuf.Reset()
			execute("launched", intArg(1))
			Expect(response).To(ContainSubstring("launches: 2"))
		})
	})

	Describe("name filters", func() {
		It("should narrow list output and reset cleanly", func() {
			execute("+filter-name", stringArg("browser"))
			Expect(response).To(ContainSubstring("cmd: +filter-name"))
			Expect(response).To(ContainSubstring("status: 0"))

			responseBuf.Reset()
			execute("list", stringArg("Text Editors"))
			Expect(response).To(ContainSubstring("list-len: 0"))
			Expect(response).NotTo(ContainSubstring("Alpha Editor"))

			responseBuf.Reset()
			execute("list", stringArg("Internet"))
			Expect(response).To(ContainSubstring("list-len: 1"))
			Expect(response).To(ContainSubstring("Web Browser"))

			responseBuf.Reset()
			execute("0filters")
			Expect(response).To(ContainSubstring("cmd: 0filters"))

			responseBuf.Reset()
			execute("list", stringArg("Text Editors"))
			Expect(response).To(ContainSubstring("list-len: 1"))
		})
	})

	Describe("unknown command", func() {
		It("should be rejected", func() {
			execute("bogus")
			Expect(response).To(ContainSubstring("unknown command"))
		})
	})

	Context("when talking over a connection pair", func() {
		It("should answer a list command end to end", func() {
			clientConn, serverConn := net.Pipe()
			defer clientConn.Close()

			go func() {
				defer serverConn.Close()
				p, err := parser.NewParser(serverConn)
				if err != nil {
					return
				}
				cmd, err := p.ParseCommand()
				if err != nil {
					return
				}
				srv.executeCommand(serverConn, cmd)
			}()

			_, err := clientConn.Write([]byte("TXT01\"Internet\nlist\n"))
			Expect(err).NotTo(HaveOccurred())

			full, err := readFullResponse(clientConn)
			Expect(err).NotTo(HaveOccurred())
			Expect(full).To(ContainSubstring("list-len: 1"))
			Expect(full).To(ContainSubstring("Web Browser"))
		})
	})
})

// Helper functions

// readFullResponse reads the complete response from a connection
func readFullResponse(conn net.Conn) (string, error) {
	// Skip TXT01 header
	header := make([]byte, 5)
	n, err := conn.Read(header)
	if err != nil || n != 5 {
		return "", err
	}

	// Read response body
	response := make([]byte, 4096)
	n, err = conn.Read(response)
	if err != nil {
		return "", err
	}

	return string(response[:n]), nil
}

// mockConn implements net.Conn for testing
type mockConn struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
}

func (m *mockConn) Read(b []byte) (n int, err error) {
	if m.readBuf == nil {
		return 0, nil
	}
	return m.readBuf.Read(b)
}

func (m *mockConn) Write(b []byte) (n int, err error) {
	if m.writeBuf == nil {
		return len(b), nil
	}
	return m.writeBuf.Write(b)
}

func (m *mockConn) Close() error {
	return nil
}

func (m *mockConn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *mockConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *mockConn) SetDeadline(t time.Time) error {
	return nil
}

func (m *mockConn) SetReadDeadline(t time.Time) error {
	return nil
}

func (m *mockConn) SetWriteDeadline(t time.Time) error {
	return nil
}
