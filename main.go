package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lookbusy1344/bitcore/config"
	"github.com/lookbusy1344/bitcore/inspect"
	"github.com/lookbusy1344/bitcore/regbus"
	"github.com/lookbusy1344/bitcore/replexpr"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("bitsctl: loading config: %v", err)
	}

	args := os.Args[1:]
	cmd := "repl"
	if len(args) > 0 && (!strings.HasPrefix(args[0], "-") || args[0] == "-help" || args[0] == "--help") {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "repl":
		runREPL(cfg, args)
	case "serve":
		runServe(cfg, args)
	case "inspect":
		runInspect(args)
	case "version":
		fmt.Printf("bitsctl %s (commit %s, built %s)\n", Version, Commit, Date)
	case "help", "-help", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "bitsctl: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: bitsctl [command] [flags]

commands:
  repl      line-oriented expression REPL (default)
  serve     start the regbus HTTP + WebSocket register server
  inspect   start the terminal register inspector
  version   print version information`)
}

// runREPL drives a line-oriented REPL over stdin evaluating expressions
// of the form <width>'<value>, a + b, a[lo:hi], a[lo:hi] = b, a << s.
func runREPL(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	width := fs.Int("width", cfg.REPL.DefaultWidth, "default width for bare numeric literals")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("repl: %v", err)
	}

	env := replexpr.NewEnv(*width)
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stderr, "bitsctl repl - enter an expression, Ctrl-D to exit")

	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		v, ok, err := env.Run(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if ok && cfg.REPL.EchoResults {
			fmt.Println(v.String())
		}
	}
}

// runServe starts the regbus HTTP/WebSocket server and blocks until it
// errors or the process receives an interrupt.
func runServe(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", cfg.Server.Port, "HTTP/WebSocket listen port")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("serve: %v", err)
	}

	srv := regbus.NewServer(*port)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("serve: shutdown error: %v", err)
		}
	}
}

// runInspect launches the terminal inspector against an in-process
// register file, optionally seeded by -register name:width=value flags.
func runInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	var seeds stringSliceFlag
	fs.Var(&seeds, "register", "seed a register as name:width[=value] (repeatable)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("inspect: %v", err)
	}

	registry := regbus.NewRegistry()
	for _, seed := range seeds {
		name, width, initial, err := parseSeed(seed)
		if err != nil {
			log.Fatalf("inspect: invalid -register %q: %v", seed, err)
		}
		if _, err := registry.Create(name, width, initial); err != nil {
			log.Fatalf("inspect: creating register %q: %v", name, err)
		}
	}

	tui := inspect.NewTUI(registry)
	if err := tui.Run(); err != nil {
		log.Fatalf("inspect: %v", err)
	}
}

// parseSeed parses "name:width" or "name:width=value" into its parts.
func parseSeed(s string) (name string, width int, initial int64, err error) {
	nameRest := strings.SplitN(s, ":", 2)
	if len(nameRest) != 2 {
		return "", 0, 0, fmt.Errorf("expected name:width[=value]")
	}
	name = nameRest[0]

	widthValue := strings.SplitN(nameRest[1], "=", 2)
	width, err = strconv.Atoi(widthValue[0])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid width %q: %w", widthValue[0], err)
	}
	if len(widthValue) == 2 {
		base := 10
		text := widthValue[1]
		if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
			text = text[2:]
			base = 16
		}
		initial, err = strconv.ParseInt(text, base, 64)
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid initial value %q: %w", widthValue[1], err)
		}
	}
	return name, width, initial, nil
}

// stringSliceFlag collects repeated occurrences of a flag into a slice.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return strings.Join(*s, ",") }

func (s *stringSliceFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}
