package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/live-labs/keyguard/cmd"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "set":
		runSet(os.Args[2:])
	case "get":
		runGet(os.Args[2:])
	case "has":
		runHas(os.Args[2:])
	case "check":
		runCheck(os.Args[2:])
	case "diff":
		runDiff(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// commonFlags registers the vault-selection flags shared by every
// command.
func commonFlags(fs *flag.FlagSet) *cmd.Options {
	opts := &cmd.Options{}
	fs.StringVar(&opts.Service, "service", "keyguard", "Vault identifier")
	fs.StringVar(&opts.Group, "group", "", "Shared access group")
	fs.StringVar(&opts.Access, "access", "", "Access-control policy (default: user-presence)")
	fs.StringVar(&opts.DB, "db", "", "Use an encrypted file store at this path instead of the OS keychain")
	fs.BoolVar(&opts.AlwaysPrompt, "always-prompt", false, "Demand fresh authentication on every read")
	return opts
}

func parseOrDie(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func requireKey(fs *flag.FlagSet, command string) string {
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: keyguard %s [flags] <key>\n", command)
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runSet(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	opts := commonFlags(fs)
	file := fs.String("file", "", "Read the value from this file instead of stdin")
	showDiff := fs.Bool("diff", false, "Show a diff against the current value and confirm before overwriting")
	parseOrDie(fs, args)

	cmd.Set(*opts, requireKey(fs, "set"), *file, *showDiff)
}

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	opts := commonFlags(fs)
	reason := fs.String("prompt", "", "Reason shown on the authentication prompt")
	parseOrDie(fs, args)

	cmd.Get(*opts, requireKey(fs, "get"), *reason)
}

func runHas(args []string) {
	fs := flag.NewFlagSet("has", flag.ExitOnError)
	opts := commonFlags(fs)
	parseOrDie(fs, args)

	cmd.Has(*opts, requireKey(fs, "has"))
}

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	opts := commonFlags(fs)
	parseOrDie(fs, args)

	cmd.Check(*opts)
}

func runDiff(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	opts := commonFlags(fs)
	parseOrDie(fs, args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: keyguard diff [flags] <key> <file>")
		os.Exit(1)
	}
	cmd.Diff(*opts, fs.Arg(0), fs.Arg(1))
}

func printUsage() {
	fmt.Println(`keyguard - user-presence-gated secret storage

Usage: keyguard <command> [flags] [args]

Commands:
  set <key>          Store a value (from stdin or --file)
  get <key>          Print a stored value
  has <key>          Check whether a key exists
  check              Probe store reachability without prompting
  diff <key> <file>  Compare a stored value with a local file
  help               Show this help

Common flags:
  --service <id>     Vault identifier (default "keyguard")
  --group <id>       Shared access group
  --access <policy>  Access-control policy (default "user-presence")
  --always-prompt    Demand fresh authentication on every read
  --db <path>        Encrypted file store instead of the OS keychain

For file stores the passphrase is read from KEYGUARD_PASSPHRASE or
prompted interactively.`)
}
