package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"product-api/internal/client"
	"product-api/internal/logger"
	"product-api/internal/version"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const usage = `usage: product-client [flags] <command> [args]

commands:
  list [-category c] [-page n] [-limit n]
  search <name>
  stats
  get <id>
  create <json|->
  update <id> <json|->
  delete <id>

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Request logs would interleave with command output.
	logger.SetOutput(io.Discard)

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	_ = godotenv.Load()
	env := viper.New()
	env.SetDefault("PRODUCT_API_URL", "http://localhost:3000")
	env.SetDefault("PRODUCT_API_TIMEOUT_MS", 5000)
	env.AutomaticEnv()

	fs := flag.NewFlagSet("product-client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	baseURL := fs.String("url", env.GetString("PRODUCT_API_URL"), "API base URL (PRODUCT_API_URL)")
	apiKey := fs.String("key", env.GetString("API_KEY"), "API key (API_KEY)")
	timeout := fs.Duration("timeout", time.Duration(env.GetInt("PRODUCT_API_TIMEOUT_MS"))*time.Millisecond, "request timeout")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *showVersion {
		fmt.Fprintf(stdout, "product-client %s (%s, %s)\n", version.Version, version.Commit, version.BuildTime)
		return nil
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	c := client.NewProductClient(*baseURL, *apiKey, *timeout)
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	logger.Info(ctx, "product-client", slog.String("command", cmd), slog.String("url", *baseURL))

	var (
		out any
		err error
	)
	switch cmd {
	case "list":
		out, err = list(ctx, c, rest, stderr)
	case "search":
		if len(rest) != 1 {
			return usageError(fs, "search takes one name")
		}
		out, err = c.Search(ctx, rest[0])
	case "stats":
		out, err = c.Stats(ctx)
	case "get":
		if len(rest) != 1 {
			return usageError(fs, "get takes one id")
		}
		out, err = c.Get(ctx, rest[0])
	case "create":
		if len(rest) != 1 {
			return usageError(fs, "create takes one JSON payload")
		}
		var payload json.RawMessage
		if payload, err = readPayload(rest[0], stdin); err != nil {
			return err
		}
		out, err = c.Create(ctx, payload)
	case "update":
		if len(rest) != 2 {
			return usageError(fs, "update takes an id and a JSON payload")
		}
		var payload json.RawMessage
		if payload, err = readPayload(rest[1], stdin); err != nil {
			return err
		}
		out, err = c.Update(ctx, rest[0], payload)
	case "delete":
		if len(rest) != 1 {
			return usageError(fs, "delete takes one id")
		}
		out, err = c.Delete(ctx, rest[0])
	default:
		return usageError(fs, "unknown command "+cmd)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func list(ctx context.Context, c *client.ProductClient, args []string, stderr io.Writer) (any, error) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts client.ListOptions
	fs.StringVar(&opts.Category, "category", "", "exact category")
	fs.IntVar(&opts.Page, "page", 0, "page number, from 1")
	fs.IntVar(&opts.Limit, "limit", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	return c.List(ctx, opts)
}

// readPayload returns arg as JSON, or stdin when arg is "-".
func readPayload(arg string, stdin io.Reader) (json.RawMessage, error) {
	raw := []byte(arg)
	if arg == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = b
	}
	raw = []byte(strings.TrimSpace(string(raw)))
	if !json.Valid(raw) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	return raw, nil
}

func usageError(fs *flag.FlagSet, msg string) error {
	fmt.Fprintln(fs.Output(), msg)
	fs.Usage()
	return errUsage
}
