// Command mockup renders mockup definitions, imports PSD templates and
// watches a design file for live previews.
//
// Usage:
//
//	mockup render  -def card.json -snap front=design.png -out card.png
//	mockup extract -in template.psd -out card.json -previews previews/
//	mockup watch   -def card.json -area front -design design.png -out preview.png
//
// Every subcommand accepts -config with a YAML file (see config.go).
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/gogpu/mockup/gpu"
)

type command struct {
	name  string
	usage string
	run   func(args []string) error
}

var commands = []command{
	{"render", "composite a definition with design snapshots into a PNG", runRender},
	{"extract", "derive a definition from the smart objects of a PSD file", runExtract},
	{"watch", "re-render a preview whenever a design file changes", runWatch},
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("mockup: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name, args := os.Args[1], os.Args[2:]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if err := cmd.run(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				os.Exit(2)
			}
			log.Fatal(err)
		}
		return
	}
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mockup <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", cmd.name, cmd.usage)
	}
}
