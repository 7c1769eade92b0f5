package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Boo15mario/access-launcher/client/launcher"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [args...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  groups                   - List category groups\n")
		fmt.Fprintf(os.Stderr, "  list <group>             - List applications in a group\n")
		fmt.Fprintf(os.Stderr, "  entry <id>               - Show details for an application\n")
		fmt.Fprintf(os.Stderr, "  argv <id>                - Show the launch command for an application\n")
		fmt.Fprintf(os.Stderr, "  run <id>                 - Launch an application\n")
		fmt.Fprintf(os.Stderr, "  filter-name <name>       - Filter listings by name\n")
		fmt.Fprintf(os.Stderr, "  reset-filters            - Reset all filters\n")
		fmt.Fprintf(os.Stderr, "  rescan                   - Rescan application directories\n")
		fmt.Fprintf(os.Stderr, "  interactive              - Interactive mode\n")
		os.Exit(1)
	}

	// Create client
	client, err := launcher.NewClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	cmd := os.Args[1]

	if cmd == "interactive" {
		runInteractive(client)
		return
	}

	if cmd == "run" {
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s run <id>\n", os.Args[0])
			os.Exit(1)
		}
		runApplication(client, os.Args[2])
		return
	}

	// Execute command
	switch cmd {
	case "groups":
		sendOrDie(client, "groups", nil)
	case "list":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s list <group>\n", os.Args[0])
			os.Exit(1)
		}
		sendOrDie(client, "list", []string{`"` + os.Args[2]})
	case "entry":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s entry <id>\n", os.Args[0])
			os.Exit(1)
		}
		sendOrDie(client, "entry", []string{os.Args[2]})
	case "argv":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s argv <id>\n", os.Args[0])
			os.Exit(1)
		}
		sendOrDie(client, "argv", []string{os.Args[2]})
	case "filter-name":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s filter-name <name>\n", os.Args[0])
			os.Exit(1)
		}
		sendOrDie(client, "+filter-name", []string{`"` + os.Args[2]})
	case "reset-filters":
		sendOrDie(client, "0filters", nil)
	case "rescan":
		sendOrDie(client, "rescan", nil)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}

	// Read and print response
	if err := client.ReadResponse(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read response: %v\n", err)
		os.Exit(1)
	}
}

func sendOrDie(client *launcher.Client, cmd string, args []string) {
	if err := client.SendCommand(cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to send command: %v\n", err)
		os.Exit(1)
	}
}

// runApplication asks the daemon for the validated argv and spawns it.
// The daemon itself never starts processes; that boundary ends here.
func runApplication(client *launcher.Client, idArg string) {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid id: %s\n", idArg)
		os.Exit(1)
	}

	argv, err := client.Argv(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get launch command: %v\n", err)
		os.Exit(1)
	}
	if len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "Empty launch command\n")
		os.Exit(1)
	}

	execCmd := exec.Command(argv[0], argv[1:]...)
	if err := execCmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start %s: %v\n", argv[0], err)
		os.Exit(1)
	}
	fmt.Printf("Started %s with PID %d\n", argv[0], execCmd.Process.Pid)

	if count, err := client.Launched(id); err == nil {
		fmt.Printf("Launch count: %d\n", count)
	}
}

func runInteractive(client *launcher.Client) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Interactive mode. Type commands or 'exit' to quit.")
	fmt.Print("> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "exit" || line == "quit" {
			break
		}

		if line == "" {
			fmt.Print("> ")
			continue
		}

		// Parse command
		parts := strings.Fields(line)
		if len(parts) == 0 {
			fmt.Print("> ")
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		// Send command with type detection
		if err := client.SendCommand(cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send command: %v\n", err)
			fmt.Print("> ")
			continue
		}

		// Read response
		if err := client.ReadResponse(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read response: %v\n", err)
		}

		fmt.Print("> ")
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}
