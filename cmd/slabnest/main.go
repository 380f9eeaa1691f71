// Command slabnest nests stone parts onto slabs.
//
//	slabnest serve                      run the HTTP API
//	slabnest optimize -in request.json  nest a request or a saved project
//	slabnest compare  -in request.json  compare kerf what-ifs
//	slabnest import   -parts parts.csv  build a request from a part list
//	slabnest estimate -in request.json  estimate slabs to buy
//	slabnest inventory                  show the slab inventory
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/piwi3910/SlabNest/internal/logger"
)

var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, stdout io.Writer) error
}

var commands = []command{
	{"serve", "run the HTTP API", runServe},
	{"optimize", "nest a request or project and export the layout", runOptimize},
	{"compare", "compare kerf scenarios for a request", runCompare},
	{"import", "build a nesting request from a CSV, Excel or DXF part list", runImport},
	{"estimate", "estimate how many slabs to buy", runEstimate},
	{"inventory", "list, import or back up the slab inventory", runInventory},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	_ = logger.Sync()
	stop()

	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "slabnest:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:], stdout)
		}
	}
	usage(stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: slabnest <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
}
