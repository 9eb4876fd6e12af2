// Command htmlemu loads an HTML file or URL with an emulated browser and
// prints what the page's scripts reported.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chrisuehlinger/htmlemu/network"
	"github.com/chrisuehlinger/htmlemu/webclient"
	"github.com/rs/zerolog"
)

const (
	exitLoadFailure = 1
	exitUsage       = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defaults := webclient.DefaultConfig()

	fs := flag.NewFlagSet("htmlemu", flag.ContinueOnError)
	fs.SetOutput(stderr)
	browserName := fs.String("browser", defaults.Browser, "Browser profile to emulate")
	profiles := fs.String("profiles", "", "TOML file with additional browser profiles")
	budget := fs.Duration("budget", defaults.JSTimeBudget, "Virtual time timers may run after load")
	timeout := fs.Duration("timeout", defaults.HTTPTimeout, "HTTP request timeout")
	verbose := fs.Bool("v", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: htmlemu [options] <file-or-url>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  htmlemu -browser firefox page.html\n")
		fmt.Fprintf(stderr, "  htmlemu -budget 10s https://example.com/\n")
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	cfg := defaults
	cfg.Browser = *browserName
	cfg.ProfilesFile = *profiles
	cfg.JSTimeBudget = *budget
	cfg.HTTPTimeout = *timeout
	cfg.Logger = log

	client, err := webclient.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	target, err := pageURL(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	page, err := client.GetPage(context.Background(), target)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitLoadFailure
	}
	defer page.Close()

	for _, msg := range page.Alerts() {
		fmt.Fprintln(stdout, msg)
	}
	fmt.Fprintln(stdout, page.Title())
	for _, scriptErr := range page.Errors() {
		fmt.Fprintf(stderr, "script error: %v\n", scriptErr)
	}
	return 0
}

// pageURL turns a command-line argument into a URL. Anything without a
// scheme is treated as a local path.
func pageURL(arg string) (string, error) {
	if i := strings.Index(arg, "://"); i > 0 || strings.HasPrefix(arg, "data:") {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	return network.FileURL(abs), nil
}
