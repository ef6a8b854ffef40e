package cmd

import (
	"context"
	"io"
	"os"

	"github.com/stealthrocket/httpcraft/internal/httpcraft"
	"github.com/stealthrocket/httpcraft/internal/print/jsonprint"
	"github.com/stealthrocket/httpcraft/internal/print/yamlprint"
)

const configUsage = `
Usage:	httpcraft config [options]

   The config command prints the configuration of httpcraft. The text format
   shows the configuration file as written, or the default configuration when
   the file does not exist.

Options:
   -c, --config path    Path to the httpcraft configuration file (overrides HTTPCRAFTCONFIG)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
`

func config(ctx context.Context, args []string) error {
	output := outputFormat("text")

	flagSet := newFlagSet("httpcraft config", configUsage)
	customVar(flagSet, &output, "o", "output")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("httpcraft config: unexpected arguments: %v", args)
	}

	config, err := httpcraft.LoadConfig()
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	switch output {
	case "json":
		return jsonprint.Print(w, config)
	case "yaml":
		return yamlprint.Print(w, config)
	default:
		r, _, err := httpcraft.OpenConfig()
		if err != nil {
			return err
		}
		defer r.Close()
		_, err = io.Copy(w, r)
		return err
	}
}
