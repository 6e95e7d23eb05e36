package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/doorlock/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "keypad":
		runKeypad(ctx, os.Args[2:])
	case "enter":
		runEnter(ctx, os.Args[2:])
	case "lock":
		runLock(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "reset":
		runReset(ctx, os.Args[2:])
	case "pin":
		runPIN(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// newFlagSet creates a subcommand flag set with the shared -config flag
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "Path to doorlock.toml")
	return fs, configPath
}

func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runKeypad(ctx context.Context, args []string) {
	fs, configPath := newFlagSet("keypad")
	parse(fs, args)

	cmd.Keypad(ctx, *configPath)
}

func runEnter(ctx context.Context, args []string) {
	fs, configPath := newFlagSet("enter")
	trace := fs.Bool("trace", false, "Show how the lock state changed")
	parse(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: doorlock enter [-trace] <pin>")
		os.Exit(1)
	}
	cmd.Enter(ctx, *configPath, fs.Arg(0), *trace)
}

func runLock(ctx context.Context, args []string) {
	fs, configPath := newFlagSet("lock")
	parse(fs, args)

	cmd.Lock(ctx, *configPath)
}

func runStatus(ctx context.Context, args []string) {
	fs, configPath := newFlagSet("status")
	parse(fs, args)

	cmd.Status(ctx, *configPath)
}

func runReset(ctx context.Context, args []string) {
	fs, configPath := newFlagSet("reset")
	force := fs.Bool("force", false, "Reset without confirmation")
	parse(fs, args)

	cmd.Reset(ctx, *configPath, *force)
}

func runPIN(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: doorlock pin <set|rm|status|hash>")
		os.Exit(1)
	}

	fs, configPath := newFlagSet("pin " + args[0])
	parse(fs, args[1:])

	switch args[0] {
	case "set":
		cmd.PINSet(*configPath)
	case "rm":
		cmd.PINDelete(*configPath)
	case "status":
		cmd.PINStatus(*configPath)
	case "hash":
		cmd.PINHash(*configPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown pin command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: doorlock pin <set|rm|status|hash>")
		os.Exit(1)
	}
}

func runCompact(ctx context.Context, args []string) {
	fs, configPath := newFlagSet("compact")
	parse(fs, args)

	cmd.Compact(ctx, *configPath)
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: doorlock completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("doorlock - PIN pad door lock simulator")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  doorlock <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  keypad      Interactive terminal keypad")
	fmt.Println("  enter       Submit a PIN once")
	fmt.Println("  lock        Lock the door")
	fmt.Println("  status      Show lock state and lockout countdown")
	fmt.Println("  reset       Erase persisted lock state")
	fmt.Println("  pin         Manage the PIN kept in the OS keyring")
	fmt.Println("  compact     Compact the state file")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  doorlock keypad                 # Open the keypad")
	fmt.Println("  doorlock enter 8765             # Try a PIN")
	fmt.Println("  doorlock lock                   # Lock again")
	fmt.Println("  doorlock status                 # Check state")
	fmt.Println()
	fmt.Println("Use 'doorlock help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "keypad":
		fmt.Println("doorlock keypad [-config file]")
		fmt.Println()
		fmt.Println("Opens an interactive keypad in the terminal.")
		fmt.Println("The PIN is submitted automatically once all digits are entered.")
		fmt.Println()
		fmt.Println("Keys:")
		fmt.Println("  0-9                 Enter a digit")
		fmt.Println("  Backspace, Delete   Remove the last digit")
		fmt.Println("  Enter               Submit a complete PIN")
		fmt.Println("  Esc                 Clear the input")
		fmt.Println("  l                   Lock the door")
		fmt.Println("  q, Ctrl-C           Quit")
	case "enter":
		fmt.Println("doorlock enter [-trace] [-config file] <pin>")
		fmt.Println()
		fmt.Println("Submits a PIN once. Exits with status 1 on a wrong PIN or during lockout.")
		fmt.Println("Each wrong PIN counts as a failed attempt. After too many failures")
		fmt.Println("the keypad is blocked until the lockout ends.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -trace    Show how the lock state changed")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  doorlock enter 8765")
		fmt.Println("  DOORLOCK_PIN=1234 doorlock enter 1234")
	case "lock":
		fmt.Println("doorlock lock [-config file]")
		fmt.Println()
		fmt.Println("Locks the door. Failed attempts and any lockout are kept.")
	case "status":
		fmt.Println("doorlock status [-config file]")
		fmt.Println()
		fmt.Println("Shows whether the door is locked, failed attempts,")
		fmt.Println("and the time left on an active lockout.")
	case "reset":
		fmt.Println("doorlock reset [--force] [-config file]")
		fmt.Println()
		fmt.Println("Erases the unlock flag, attempt count and lockout deadline.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --force   Reset without confirmation")
	case "pin":
		fmt.Println("doorlock pin <set|rm|status|hash> [-config file]")
		fmt.Println()
		fmt.Println("Manages the door PIN.")
		fmt.Println()
		fmt.Println("  set      Save a PIN to the OS keyring (overrides the config file)")
		fmt.Println("  rm       Remove the keyring PIN")
		fmt.Println("  status   Show where the active PIN comes from")
		fmt.Println("  hash     Print a pin_hash line for doorlock.toml")
		fmt.Println()
		fmt.Println("DOORLOCK_PIN overrides both the keyring and the config file.")
	case "compact":
		fmt.Println("doorlock compact [-config file]")
		fmt.Println()
		fmt.Println("Compacts the state database to reclaim unused disk space.")
	case "completion":
		fmt.Println("doorlock completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(doorlock completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(doorlock completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  doorlock completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
