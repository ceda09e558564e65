package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/thatsimonsguy/firesim/db"
)

func main() {
	DebugCLI()
}

func DebugCLI() {
	var dbPath, command string
	var limit int
	flag.StringVar(&dbPath, "db", "data/firesim.db", "Path to the SQLite history database file")
	flag.StringVar(&command, "cmd", "", "Command to run: list-events, list-runs, clear-events")
	flag.IntVar(&limit, "limit", 50, "Max rows to list")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || command == "" {
		fmt.Println("\nUsage of firesim-debug:")
		fmt.Println("  -db string\tPath to the SQLite history database file (default 'data/firesim.db')")
		fmt.Println("  -cmd string\tCommand to run: list-events, list-runs, clear-events")
		fmt.Println("  -limit int\tMax rows to list (default 50)")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	var err error
	switch command {
	case "list-events":
		err = db.ListEventsCLI(dbPath, limit)
	case "list-runs":
		err = db.ListRunsCLI(dbPath, limit)
	case "clear-events":
		err = db.ClearEventsCLI(dbPath)
	default:
		fmt.Println("Invalid command")
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Command %s failed: %v\n", command, err)
		os.Exit(1)
	}
}
