package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/lakemap/internal/lake"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in" description:"Input dataset path (lakes.json). Reads from stdin if empty"`
	Output string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Strict bool   `short:"s" long:"strict" description:"Fail when any record is skipped"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	ds, err := lake.Decode(bytes.NewReader(inputData))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding dataset: %v\n", err)
		os.Exit(1)
	}

	for _, issue := range ds.Issues {
		fmt.Fprintf(os.Stderr, "Record %d (id %q): %s %s\n", issue.Index, issue.ID, issue.Reason, issue.Detail)
	}
	if opts.Strict && ds.Partial() {
		fmt.Fprintf(os.Stderr, "Error: %d records skipped\n", ds.Skipped())
		os.Exit(1)
	}

	fc := lake.FeatureCollection(ds.Lakes)

	// marshal
	var outputData []byte
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(fc)
	} else {
		outputData, err = json.MarshalIndent(fc, "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d lakes to %s (format: %s)\n", len(fc.Features), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}
