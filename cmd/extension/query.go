package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/flourish-xyz/go-extension/journal"
)

func uriCmd(args []string) error {
	fs := flag.NewFlagSet("uri", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: extension uri [options] <token-id>")
	}
	id, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid token id %q: %w", fs.Arg(0), err)
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	uri, err := eng.TokenURI(id)
	if err != nil {
		return err
	}
	fmt.Println(uri)
	return nil
}

func infoCmd(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("Owner:          %s\n", eng.Owner())
	fmt.Printf("Moderator:      %s (moderating: %v)\n", eng.Moderator(), eng.CanModerate())
	fmt.Printf("Validator:      %s\n", eng.ValidatorAddress())
	fmt.Printf("Balance:        %s wei\n", eng.Balance().Dec())
	fmt.Printf("Tokens minted:  %d\n", eng.TotalMinted())

	gen, err := eng.GenerationInfo(eng.CurrentGeneration())
	if err != nil {
		return err
	}
	fmt.Printf("Generation %d:   ids from %d, owner %d/%d, total %d/%d\n",
		gen.Number, gen.MintNumStart, gen.OwnerMinted, gen.OwnerCap, gen.TotalMinted, gen.TotalCap)

	version := eng.CurrentExtensionSet()
	fmt.Printf("Extension set:  version %d\n", version)
	if version > 0 {
		addrs, err := eng.ExtensionSetAddresses(version)
		if err != nil {
			return err
		}
		for i, a := range addrs {
			fmt.Printf("  [%d] %s\n", i, a)
		}
	}
	return nil
}

func eventsCmd(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	eventType := fs.String("type", "", "Only show events of this type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	store, err := journal.NewSQLiteStore(*db)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := journal.EventFilter{StreamID: streamName}
	if *eventType != "" {
		filter.Types = []string{*eventType}
	}
	events, err := store.ReadAll(ctx, filter)
	if err != nil {
		return err
	}

	for _, e := range events {
		fmt.Printf("%4d  %s  %-24s %s\n", e.Version, e.Time.Format("2006-01-02 15:04:05"), e.Type, string(e.Data))
	}
	return nil
}
