// Command analyze-client sends image URLs to a running inspector and prints
// the results.
//
//	analyze-client -server http://localhost:8080 [-full] [-batch] URL...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze-client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", "http://localhost:8080", "inspector base URL")
	full := fs.Bool("full", false, "print the full JSON report")
	batch := fs.Bool("batch", false, "send all URLs in a single batch request")
	timeout := fs.Duration("timeout", 60*time.Second, "per-request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: analyze-client [-server URL] [-full] [-batch] IMAGE_URL...")
		return 2
	}

	client := NewClient(*server, *timeout)
	ctx := context.Background()
	failed := 0

	emit := func(imageURL string, report json.RawMessage) {
		var (
			out string
			err error
		)
		if *full {
			out, err = indent(report)
		} else {
			out, err = summarize(imageURL, report)
		}
		if err != nil {
			failed++
			fmt.Fprintf(stderr, "%s: %v\n", imageURL, err)
			return
		}
		fmt.Fprintln(stdout, out)
	}

	if *batch {
		resp, err := client.AnalyzeBatch(ctx, fs.Args())
		if err != nil {
			fmt.Fprintf(stderr, "batch failed: %v\n", err)
			return 1
		}
		for _, r := range resp.Results {
			if r.Error != nil {
				failed++
				fmt.Fprintf(stderr, "%s: %s (%s)\n", r.ImageURL, r.Error.Message, r.Error.Type)
				continue
			}
			emit(r.ImageURL, r.Report)
		}
	} else {
		for _, imageURL := range fs.Args() {
			report, err := client.Analyze(ctx, imageURL)
			if err != nil {
				failed++
				fmt.Fprintf(stderr, "%s: %v\n", imageURL, err)
				continue
			}
			emit(imageURL, report)
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}
