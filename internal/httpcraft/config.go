// Package httpcraft loads the httpcraft configuration and builds the server
// components it describes.
package httpcraft

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/stealthrocket/httpcraft/internal/compress"
	"github.com/stealthrocket/httpcraft/internal/filestore"
	"github.com/stealthrocket/httpcraft/internal/http1"
	"github.com/stealthrocket/httpcraft/internal/print/human"
	"github.com/stealthrocket/httpcraft/internal/router"
	"github.com/stealthrocket/httpcraft/internal/server"
)

const (
	defaultConfigPath    = "~/.httpcraft/config.yaml"
	defaultMaxHeaderSize = 1 * human.MiB
)

// ConfigPath is the path to the httpcraft configuration. It is initialized
// from $HTTPCRAFTCONFIG when the variable is set.
var ConfigPath human.Path = defaultConfigPath

func init() {
	if p := os.Getenv("HTTPCRAFTCONFIG"); p != "" {
		ConfigPath = human.Path(p)
	}
}

// LoadConfig opens and reads the configuration file.
func LoadConfig() (*Config, error) {
	r, _, err := OpenConfig()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadConfig(r)
}

// OpenConfig opens the configuration file. When the file does not exist, the
// returned reader produces the YAML encoding of the default configuration.
func OpenConfig() (io.ReadCloser, string, error) {
	path, err := ConfigPath.Resolve()
	if err != nil {
		return nil, path, err
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
		b, _ := yaml.Marshal(DefaultConfig())
		return io.NopCloser(bytes.NewReader(b)), path, nil
	}
	return f, path, nil
}

// ReadConfig reads and parses configuration. Unknown fields are errors.
func ReadConfig(r io.Reader) (*Config, error) {
	c := DefaultConfig()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil && err != io.EOF {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfig is the default configuration.
func DefaultConfig() *Config {
	c := new(Config)
	c.Server.Listen = server.DefaultAddress
	c.Server.MaxHeaderSize = defaultMaxHeaderSize
	c.Compression.Level = compress.DefaultCompression
	return c
}

// Config is httpcraft configuration.
type Config struct {
	Server struct {
		Listen         string               `json:"listen"          yaml:"listen"`
		Directory      Nullable[human.Path] `json:"directory"       yaml:"directory"`
		MaxConnections int                  `json:"max-connections" yaml:"max-connections"`
		AcceptRate     float64              `json:"accept-rate"     yaml:"accept-rate"`
		ReadTimeout    human.Duration       `json:"read-timeout"    yaml:"read-timeout"`
		MaxHeaderSize  human.Bytes          `json:"max-header-size" yaml:"max-header-size"`
		MaxBodySize    human.Bytes          `json:"max-body-size"   yaml:"max-body-size"`
	} `json:"server" yaml:"server"`
	Compression struct {
		Level compress.Level `json:"level" yaml:"level"`
	} `json:"compression" yaml:"compression"`
}

// Validate returns an error describing the first invalid value of c.
func (c *Config) Validate() error {
	switch {
	case c.Server.Listen == "":
		return errors.New("server.listen: address must not be empty")
	case c.Server.MaxConnections < 0:
		return fmt.Errorf("server.max-connections: invalid negative value: %d", c.Server.MaxConnections)
	case c.Server.AcceptRate < 0:
		return fmt.Errorf("server.accept-rate: invalid negative value: %g", c.Server.AcceptRate)
	case c.Server.ReadTimeout < 0:
		return fmt.Errorf("server.read-timeout: invalid negative value: %s", c.Server.ReadTimeout)
	}
	if err := c.Compression.Level.Validate(); err != nil {
		return fmt.Errorf("compression.level: %w", err)
	}
	return nil
}

// Directory returns the resolved path of the directory served by httpcraft,
// or false if none was configured.
func (c *Config) Directory() (string, bool, error) {
	location, ok := c.Server.Directory.Value()
	if !ok {
		return "", false, nil
	}
	path, err := location.Resolve()
	return path, true, err
}

// OpenStore opens the file store of the configured directory. Without a
// directory the store is empty and read-only.
func (c *Config) OpenStore() (filestore.Store, error) {
	path, ok, err := c.Directory()
	if err != nil || !ok {
		return filestore.EmptyStore(), err
	}
	return filestore.DirStore(path)
}

// NewRouter constructs the request router serving files from store.
func (c *Config) NewRouter(store filestore.Store, logger *log.Logger) *router.Router {
	r := router.New(store)
	r.Compression = c.Compression.Level
	r.Log = logger
	return r
}

// NewServer constructs a connection supervisor dispatching requests to
// handler with the limits of c.
func (c *Config) NewServer(handler server.Handler, logger *log.Logger) *server.Server {
	return &server.Server{
		Handler: handler,
		Limits: http1.Limits{
			MaxHeaderBytes: int64(c.Server.MaxHeaderSize),
			MaxBodyBytes:   int64(c.Server.MaxBodySize),
		},
		ReadTimeout:    time.Duration(c.Server.ReadTimeout),
		MaxConnections: c.Server.MaxConnections,
		AcceptRate:     c.Server.AcceptRate,
		Log:            logger,
	}
}
