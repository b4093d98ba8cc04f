package main

import (
	"fmt"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/catalog/memcatalog"
	"github.com/tanic-org/tanic/internal/catalog/restcatalog"
	"github.com/tanic-org/tanic/internal/config"
	"github.com/tanic-org/tanic/internal/logger"
	"github.com/tanic-org/tanic/internal/orchestrator"
	"github.com/tanic-org/tanic/internal/state"
	"github.com/tanic-org/tanic/internal/storage"
)

// setup loads the configuration and initializes logging. Command line flags
// override the file.
func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if debug {
		cfg.Debug = true
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	level := logger.LevelInfo
	if cfg.Debug {
		level = logger.LevelDebug
	}
	logger.InitLogger(level, cfg.LogFile)
	logger.Debug("tanic starting", "version", version, "config", configPath, "log", logger.LogPath)
	return cfg, nil
}

// newConnector routes memory:// uris to the in-memory demo catalog and
// everything else to the REST adapter.
func newConnector(cfg *config.Config) catalog.Connector {
	rest := restcatalog.NewConnector(restcatalog.Options{
		Token:        cfg.Catalog.Token,
		Credential:   cfg.Catalog.Credential,
		Warehouse:    cfg.Catalog.Warehouse,
		Timeout:      cfg.Catalog.Timeout,
		RateLimit:    cfg.Catalog.RateLimit,
		RateBurst:    cfg.Catalog.RateBurst,
		IOProperties: ioProperties(cfg.Storage),
	})

	mem := memcatalog.NewConnector()
	mem.Register(memcatalog.DemoURI, memcatalog.Demo())

	mux := catalog.NewMux(rest)
	mux.Handle(memcatalog.Scheme, mem)
	return mux
}

// ioProperties maps storage settings onto iceberg FileIO properties.
func ioProperties(s config.StorageConfig) map[string]string {
	props := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			props[k] = v
		}
	}
	set("s3.endpoint", s.Endpoint)
	set("s3.access-key-id", s.AccessKeyID)
	set("s3.secret-access-key", s.SecretAccessKey)
	set("s3.region", s.Region)
	return props
}

func newFooterReader(cfg *config.Config) *storage.FooterReader {
	return storage.NewFooterReader(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Region:          cfg.Storage.Region,
		UseSSL:          cfg.Storage.UseSSL,
		Timeout:         cfg.Storage.Timeout,
	})
}

func orchestratorOptions(cfg *config.Config) orchestrator.Options {
	footers := cfg.UI.ParquetFooterLimit
	if footers == 0 {
		// Zero in the file disables footer reads; in Options it means the default.
		footers = -1
	}
	return orchestrator.Options{
		ConnectAttempts: cfg.Catalog.ConnectAttempts,
		FooterLimit:     footers,
		Footers:         newFooterReader(cfg),
	}
}

// initialConnection picks the connection to open at startup. A uri argument
// wins over --connection, which wins over --demo. It reports false when
// nothing was requested.
func initialConnection(cfg *config.Config, args []string, name string, demo bool) (state.ConnectionDetails, bool, error) {
	switch {
	case len(args) > 0:
		return state.NewAnonConnection(args[0]), true, nil
	case name != "":
		cc, ok := cfg.Connection(name)
		if !ok {
			return state.ConnectionDetails{}, false, fmt.Errorf("no connection named %q in config", name)
		}
		return state.NewConnection(cc.Name, cc.URI), true, nil
	case demo:
		return state.NewConnection("demo", memcatalog.DemoURI), true, nil
	}
	return state.ConnectionDetails{}, false, nil
}
