package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	commands := map[string]func([]string) error{
		"init":       initCmd,
		"add":        addCmd,
		"replace":    replaceCmd,
		"remove":     removeCmd,
		"mint":       mintCmd,
		"owner-mint": ownerMintCmd,
		"next-gen":   nextGenCmd,
		"moderate":   moderateCmd,
		"relinquish": relinquishCmd,
		"recoup":     recoupCmd,
		"uri":        uriCmd,
		"info":       infoCmd,
		"events":     eventsCmd,
	}

	switch command {
	case "help", "-h", "--help":
		printUsage()
	default:
		run, ok := commands[command]
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
			printUsage()
			os.Exit(1)
		}
		if err := run(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Println(`extension - registry and mint accounting engine for a generative NFT collection

State lives in a SQLite journal; every command replays the journal,
applies its operation, and records the result.

Usage:
  extension <command> [options]

Commands:
  init        Initialize the engine (once per journal)
  add         Register a render extension
  replace     Replace a render extension with another
  remove      Remove a render extension
  mint        Public mint (payment required)
  owner-mint  Owner-quota mint to a recipient
  next-gen    Freeze the current generation and open the next
  moderate    Ban or unban an address
  relinquish  Permanently disable moderation
  recoup      Withdraw accrued funds (owner only)
  uri         Render a token's metadata URI
  info        Show engine state
  events      Show the journal event timeline
  help        Show this help message

Examples:
  # Initialize with 1000 total mints, 20 owner mints
  extension init --db art.db --deployer 0x00..01 --validator 0x00..02 --total 1000 --owner-mints 20

  # Register an extension as the owner
  extension add --db art.db --from 0x00..01 0x00..0a

  # Public mint of 2 tokens at 0.1 ether each
  extension mint --db art.db --from 0x00..03 --value 200000000000000000 --amount 2

  # Render token 1
  extension uri --db art.db 1`)
}
