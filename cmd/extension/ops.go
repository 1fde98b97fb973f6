package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/flourish-xyz/go-extension/extension"
	"github.com/flourish-xyz/go-extension/journal"
	"github.com/flourish-xyz/go-extension/token"
)

func initCmd(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	deployer := fs.String("deployer", "", "Deployer address (becomes owner and moderator)")
	validator := fs.String("validator", "", "Validator component address")
	total := fs.Uint64("total", 1000, "Generation 1 total mint cap")
	ownerMints := fs.Uint64("owner-mints", 20, "Generation 1 owner mint cap")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deployerAddr, err := token.ParseAddress(*deployer)
	if err != nil {
		return err
	}
	validatorAddr, err := token.ParseAddress(*validator)
	if err != nil {
		return err
	}

	store, err := journal.NewSQLiteStore(*db)
	if err != nil {
		return err
	}
	defer store.Close()

	eng := extension.New(extension.Options{
		Resolver: &localResolver{validator: validatorAddr},
		Journal:  store,
		Stream:   streamName,
	})
	if err := eng.Initialize(deployerAddr, *total, *ownerMints, validatorAddr); err != nil {
		return err
	}

	fmt.Printf("Initialized: owner %s, generation 1 caps %d/%d\n", deployerAddr, *ownerMints, *total)
	return nil
}

func addCmd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	from := fs.String("from", "", "Caller address")
	value := fs.String("value", "0", "Attached payment in wei")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: extension add [options] <address>")
	}

	call, ref, err := parseCallAndTarget(*from, *value, fs.Arg(0))
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := eng.AddExtension(call, ref); err != nil {
		return err
	}
	fmt.Printf("Added %s; extension set now version %d\n", ref, eng.CurrentExtensionSet())
	return nil
}

func replaceCmd(args []string) error {
	fs := flag.NewFlagSet("replace", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	from := fs.String("from", "", "Caller address")
	value := fs.String("value", "0", "Attached payment in wei")
	index := fs.Int("index", 0, "Position hint of the entry being replaced")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: extension replace [options] <old> <new>")
	}

	call, old, err := parseCallAndTarget(*from, *value, fs.Arg(0))
	if err != nil {
		return err
	}
	ref, err := token.ParseAddress(fs.Arg(1))
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := eng.ReplaceExtension(call, *index, old, ref); err != nil {
		return err
	}
	fmt.Printf("Replaced %s with %s; extension set now version %d\n", old, ref, eng.CurrentExtensionSet())
	return nil
}

func removeCmd(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	from := fs.String("from", "", "Caller address")
	value := fs.String("value", "0", "Attached payment in wei")
	index := fs.Int("index", 0, "Position hint of the entry being removed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: extension remove [options] <address>")
	}

	call, ref, err := parseCallAndTarget(*from, *value, fs.Arg(0))
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := eng.RemoveExtension(call, *index, ref); err != nil {
		return err
	}
	fmt.Printf("Removed %s; extension set now version %d\n", ref, eng.CurrentExtensionSet())
	return nil
}

func mintCmd(args []string) error {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	from := fs.String("from", "", "Caller address")
	value := fs.String("value", "0", "Attached payment in wei")
	amount := fs.Uint64("amount", 1, "Number of tokens to mint")
	if err := fs.Parse(args); err != nil {
		return err
	}

	caller, err := token.ParseAddress(*from)
	if err != nil {
		return err
	}
	wei, err := parseWeiFlag(*value)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	first, err := eng.Mint(extension.Call{Caller: caller, Value: wei}, *amount)
	if err != nil {
		return err
	}
	fmt.Printf("Minted tokens %d..%d to %s\n", first, first+*amount-1, caller)
	return nil
}

func ownerMintCmd(args []string) error {
	fs := flag.NewFlagSet("owner-mint", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	from := fs.String("from", "", "Caller address (must be owner)")
	to := fs.String("to", "", "Recipient address")
	amount := fs.Uint64("amount", 1, "Number of tokens to mint")
	if err := fs.Parse(args); err != nil {
		return err
	}

	caller, err := token.ParseAddress(*from)
	if err != nil {
		return err
	}
	recipient, err := token.ParseAddress(*to)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	first, err := eng.OwnerMint(extension.Call{Caller: caller}, *amount, recipient)
	if err != nil {
		return err
	}
	fmt.Printf("Owner-minted tokens %d..%d to %s\n", first, first+*amount-1, recipient)
	return nil
}

func nextGenCmd(args []string) error {
	fs := flag.NewFlagSet("next-gen", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	from := fs.String("from", "", "Caller address (must be owner)")
	total := fs.Uint64("total", 0, "New generation total mint cap")
	ownerMints := fs.Uint64("owner-mints", 0, "New generation owner mint cap")
	if err := fs.Parse(args); err != nil {
		return err
	}

	caller, err := token.ParseAddress(*from)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := eng.NextGeneration(extension.Call{Caller: caller}, *total, *ownerMints); err != nil {
		return err
	}
	gen, _ := eng.GenerationInfo(eng.CurrentGeneration())
	fmt.Printf("Generation %d open: ids start at %d, caps %d/%d\n", gen.Number, gen.MintNumStart, gen.OwnerCap, gen.TotalCap)
	return nil
}

func moderateCmd(args []string) error {
	fs := flag.NewFlagSet("moderate", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	from := fs.String("from", "", "Caller address (must be moderator)")
	target := fs.String("target", "", "Address to ban or unban")
	banned := fs.Bool("banned", true, "Ban (true) or unban (false)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	caller, err := token.ParseAddress(*from)
	if err != nil {
		return err
	}
	targetAddr, err := token.ParseAddress(*target)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := eng.ModerateAddress(extension.Call{Caller: caller}, targetAddr, *banned); err != nil {
		return err
	}
	fmt.Printf("Set ban=%v for %s\n", *banned, targetAddr)
	return nil
}

func relinquishCmd(args []string) error {
	fs := flag.NewFlagSet("relinquish", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	from := fs.String("from", "", "Caller address (must be moderator)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	caller, err := token.ParseAddress(*from)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := eng.RelinquishModeration(extension.Call{Caller: caller}); err != nil {
		return err
	}
	fmt.Println("Moderation permanently disabled")
	return nil
}

func recoupCmd(args []string) error {
	fs := flag.NewFlagSet("recoup", flag.ExitOnError)
	db := fs.String("db", "extension.db", "Journal database path")
	from := fs.String("from", "", "Caller address (must be owner)")
	to := fs.String("to", "", "Destination address")
	amount := fs.String("amount", "0", "Amount to withdraw in wei")
	if err := fs.Parse(args); err != nil {
		return err
	}

	caller, err := token.ParseAddress(*from)
	if err != nil {
		return err
	}
	dest, err := token.ParseAddress(*to)
	if err != nil {
		return err
	}
	wei, err := parseWeiFlag(*amount)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, store, err := openEngine(ctx, *db)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := eng.EthRecoup(extension.Call{Caller: caller}, dest, wei); err != nil {
		return err
	}
	fmt.Printf("Recouped %s wei to %s; %s wei remaining\n", wei.Dec(), dest, eng.Balance().Dec())
	return nil
}

func parseCallAndTarget(from, value, target string) (extension.Call, token.Address, error) {
	caller, err := token.ParseAddress(from)
	if err != nil {
		return extension.Call{}, token.ZeroAddress, err
	}
	wei, err := parseWeiFlag(value)
	if err != nil {
		return extension.Call{}, token.ZeroAddress, err
	}
	ref, err := token.ParseAddress(target)
	if err != nil {
		return extension.Call{}, token.ZeroAddress, err
	}
	return extension.Call{Caller: caller, Value: wei}, ref, nil
}
