package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/stealthrocket/httpcraft/internal/httpcraft"
	"github.com/stealthrocket/httpcraft/internal/print/human"
	"github.com/stealthrocket/httpcraft/internal/server"
)

const serveUsage = `
Usage:	httpcraft [serve] [options]

   The serve command accepts connections on the listen address and answers
   one request per connection. Options given on the command line take
   precedence over the configuration file.

Routes:
   GET  /               Serve index.html from the directory
   GET  /echo/<text>    Respond with <text>, gzip-encoded when accepted
   GET  /user-agent     Respond with the User-Agent header of the request
   GET  /files/<name>   Serve a file from the directory
   POST /files/<name>   Write the request body to a file in the directory

Options:
   -c, --config path          Path to the httpcraft configuration file (overrides HTTPCRAFTCONFIG)
       --directory path       Directory of the files served by the server
   -h, --help                 Show this usage information
   -l, --listen addr          Address to accept connections on (default: ` + server.DefaultAddress + `)
       --max-connections n    Maximum number of connections served concurrently
       --accept-rate n        Maximum number of connections accepted per second
       --read-timeout dur     Time allowed for clients to send their request
       --max-header-size size Maximum size of the request line and headers
       --max-body-size size   Maximum size of request bodies
   -q, --quiet                Do not log connection events
`

func serve(ctx context.Context, args []string) error {
	var (
		directory      human.Path
		listen         string
		maxConnections int
		acceptRate     float64
		readTimeout    human.Duration
		maxHeaderSize  human.Bytes
		maxBodySize    human.Bytes
		quiet          bool
	)

	flagSet := newFlagSet("httpcraft serve", serveUsage)
	customVar(flagSet, &directory, "directory")
	stringVar(flagSet, &listen, "l", "listen")
	intVar(flagSet, &maxConnections, "max-connections")
	float64Var(flagSet, &acceptRate, "accept-rate")
	customVar(flagSet, &readTimeout, "read-timeout")
	customVar(flagSet, &maxHeaderSize, "max-header-size")
	customVar(flagSet, &maxBodySize, "max-body-size")
	boolVar(flagSet, &quiet, "q", "quiet")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("httpcraft serve: unexpected arguments: %s", strings.Join(args, " "))
	}

	config, err := httpcraft.LoadConfig()
	if err != nil {
		return err
	}
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "directory":
			config.Server.Directory = httpcraft.NullableValue(directory)
		case "l", "listen":
			config.Server.Listen = listen
		case "max-connections":
			config.Server.MaxConnections = maxConnections
		case "accept-rate":
			config.Server.AcceptRate = acceptRate
		case "read-timeout":
			config.Server.ReadTimeout = readTimeout
		case "max-header-size":
			config.Server.MaxHeaderSize = maxHeaderSize
		case "max-body-size":
			config.Server.MaxBodySize = maxBodySize
		}
	})
	if err := config.Validate(); err != nil {
		return usageError("httpcraft serve: %s", err)
	}

	store, err := config.OpenStore()
	if err != nil {
		return err
	}

	var logger *log.Logger
	if quiet {
		logger = log.New(io.Discard, "", 0)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := server.Listen(ctx, config.Server.Listen)
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Printf("Listening at %s\n", l.Addr())
	if path, ok, _ := config.Directory(); ok {
		fmt.Printf("Hosting the contents of %s\n", path)
	}

	s := config.NewServer(config.NewRouter(store, logger), logger)
	return s.Serve(ctx, l)
}
