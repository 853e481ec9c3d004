// Command dinecluster clusters a restaurant dataset and answers top-N and
// filter queries over it, either once from the command line or as an HTTP
// service.
//
// Usage:
//
//	dinecluster serve    [flags]
//	dinecluster top      [flags] -city NAME [-n N]
//	dinecluster filter   [flags] -city NAME [-cuisine S] [-rating-min F] ...
//	dinecluster clusters [flags]
//
// Common flags are -config (YAML file, also $DINECLUSTER_CONFIG), -output
// (json or text), -k and -seed. Every setting can also be given through
// DINECLUSTER_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	name  string
	short string
	run   func(ctx context.Context, args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"serve", "run the HTTP service", runServe},
	{"top", "print the top-rated restaurants of a city", runTop},
	{"filter", "print restaurants matching a filter", runFilter},
	{"clusters", "print the fitted cluster model", runClusters},
}

// errUsage marks errors already reported by a FlagSet.
var errUsage = errors.New("usage")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		err := c.run(ctx, args[1:], stdout, stderr)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			return 2
		default:
			fmt.Fprintf(stderr, "dinecluster %s: %v\n", c.name, err)
			return 1
		}
	}

	fmt.Fprintf(stderr, "dinecluster: unknown command %q\n\n", args[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: dinecluster <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.short)
	}
}
