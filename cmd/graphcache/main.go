package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hanpama/graphcache/internal/artifact"
	"github.com/hanpama/graphcache/internal/eventbus"
	"github.com/hanpama/graphcache/internal/otel"
	"github.com/hanpama/graphcache/internal/reader"
	"github.com/hanpama/graphcache/internal/request"
	"github.com/hanpama/graphcache/internal/transport"
	"github.com/hanpama/graphcache/internal/zaplog"

	"go.uber.org/zap"
)

const rootUsage = `graphcache — normalized graph cache runtime & tools

USAGE:
  graphcache <command> [flags]

COMMANDS:
  fetch            Run an entrypoint artifact against an endpoint and print the value tree
  validate         Validate compiled artifact files without any network call
  help             Show help for any command
`

const fetchUsage = `fetch FLAGS:
  -endpoint <url>              Graph query endpoint (required)
  -artifact <file>             Entrypoint artifact JSON (required)
  -variables <json>            Request variables as a JSON object (default: {})
  -policy <yes|no|if-necessary> Fetch policy (default: if-necessary)
  -header <Name=value>         Extra HTTP header. Repeatable
  -timeout <duration>          Overall timeout, e.g. 10s (default: 30s)
  -pretty                      Pretty-print the JSON value tree
  -verbose                     Log network lifecycle events
  -otel.endpoint <addr>        OTLP collector endpoint
  -otel.service <name>         OpenTelemetry service name (default: graphcache)
`

const validateUsage = `validate FLAGS:
  -artifact <file>             Entrypoint artifact JSON. Repeatable
  -refetch <file>              Refetch artifact JSON. Repeatable
  (Query text is parsed; exits non-zero on errors)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("graphcache", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "fetch":
		return cmdFetch(cmdArgs)
	case "validate":
		return cmdValidate(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "fetch":
		fmt.Print(fetchUsage)
	case "validate":
		fmt.Print(validateUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type repeatedFlag []string

func (f *repeatedFlag) String() string     { return strings.Join(*f, ",") }
func (f *repeatedFlag) Set(v string) error { *f = append(*f, v); return nil }

func cmdFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	endpoint := fs.String("endpoint", "", "")
	artifactPath := fs.String("artifact", "", "")
	variablesJSON := fs.String("variables", "{}", "")
	policy := fs.String("policy", "if-necessary", "")
	timeout := fs.Duration("timeout", 30*time.Second, "")
	pretty := fs.Bool("pretty", false, "")
	verbose := fs.Bool("verbose", false, "")
	otelEndpoint := fs.String("otel.endpoint", "", "")
	otelService := fs.String("otel.service", "graphcache", "")
	var headers repeatedFlag
	fs.Var(&headers, "header", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, fetchUsage)
		return err
	}
	if *endpoint == "" || *artifactPath == "" {
		fmt.Fprint(os.Stderr, fetchUsage)
		return fmt.Errorf("-endpoint and -artifact are required")
	}

	var shouldFetch request.ShouldFetch
	switch *policy {
	case "yes":
		shouldFetch = request.Yes
	case "no":
		shouldFetch = request.No
	case "if-necessary":
		shouldFetch = request.IfNecessary
	default:
		return fmt.Errorf("invalid -policy %q", *policy)
	}

	var variables map[string]any
	if err := json.Unmarshal([]byte(*variablesJSON), &variables); err != nil {
		return fmt.Errorf("invalid -variables JSON: %w", err)
	}

	f, err := os.Open(*artifactPath)
	if err != nil {
		return err
	}
	ep, err := artifact.DecodeEntrypoint(f)
	f.Close()
	if err != nil {
		return err
	}

	reg := artifact.NewRegistry()
	if err := reg.RegisterEntrypoint(ep); err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	if *verbose {
		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()
		detach := zaplog.Attach(logger)
		defer detach()
	}
	shutdown, err := otel.Setup(*otelEndpoint, *otelService)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	var topts []transport.Option
	for _, h := range headers {
		parts := strings.SplitN(h, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid -header %q", h)
		}
		topts = append(topts, transport.WithHeader(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])))
	}

	env := request.NewEnvironment(reg, transport.NewHTTP(*endpoint, topts...))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	p, dispose, err := env.MakeNetworkRequest(ctx, ep, variables, request.FetchOptions{ShouldFetch: shouldFetch})
	if err != nil {
		return err
	}
	defer dispose()
	if _, err := p.Wait(ctx); err != nil {
		return err
	}

	// The request may have resolved without fetching (-policy no, or an
	// IfNecessary short circuit against a prior store). Reading an absent
	// fragment is a contract violation, so gate the read.
	res, err := env.Check(ep, variables)
	if err != nil {
		return err
	}
	if res != reader.EnoughData {
		return fmt.Errorf("store does not hold the data for %s (policy %s); nothing to print", ep.ID, *policy)
	}

	data, err := env.ReadFragment(env.FragmentReference(ep, variables, p))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func cmdValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	var entrypoints, refetches repeatedFlag
	fs.Var(&entrypoints, "artifact", "")
	fs.Var(&refetches, "refetch", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, validateUsage)
		return err
	}
	if len(entrypoints) == 0 && len(refetches) == 0 {
		fmt.Fprint(os.Stderr, validateUsage)
		return fmt.Errorf("nothing to validate")
	}

	reg := artifact.NewRegistry()
	for _, path := range entrypoints {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		ep, err := artifact.DecodeEntrypoint(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := reg.RegisterEntrypoint(ep); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("ok\tentrypoint\t%s\t%s\n", ep.ID, path)
	}
	for _, path := range refetches {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		ra, err := artifact.DecodeRefetch(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := reg.RegisterRefetch(ra); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("ok\trefetch\t%s\t%s\n", ra.ID, path)
	}
	return nil
}
