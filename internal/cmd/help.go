package cmd

import (
	"context"
	"fmt"
	"strings"
)

const helpUsage = `
Usage:	httpcraft <command> [options]

Server Commands:
   serve    Serve files and diagnostic endpoints over HTTP/1.1 (default)

Other Commands:
   config   Show the httpcraft configuration
   help     Show usage information about httpcraft commands
   version  Show the httpcraft version information

Global Options:
   -c, --config  Path to the httpcraft configuration file (overrides HTTPCRAFTCONFIG)
   -h, --help    Show usage information

For a description of each command, run 'httpcraft help <command>'.`

func help(ctx context.Context, args []string) error {
	flagSet := newFlagSet("httpcraft help", helpUsage)
	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}

	var cmd string
	var msg string

	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "config":
		msg = configUsage
	case "help", "":
		msg = helpUsage
	case "serve":
		msg = serveUsage
	case "version":
		msg = versionUsage
	default:
		return usageError("httpcraft help %s: unknown command", cmd)
	}

	fmt.Println(strings.TrimSpace(msg))
	return nil
}
