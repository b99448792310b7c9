package flags

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/project-nft-registry/api"
	"github.com/ruteri/project-nft-registry/auth"
	"github.com/ruteri/project-nft-registry/common"
	"github.com/ruteri/project-nft-registry/interfaces"
	"github.com/ruteri/project-nft-registry/storage"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

// ConfigureContentStorage builds the content backend from the repeated
// --content-storage flag. It returns nil when no location is configured.
func ConfigureContentStorage(cCtx *cli.Context, logger *slog.Logger) (interfaces.ContentBackend, error) {
	uris := cCtx.StringSlice(ContentStorageFlag.Name)
	if len(uris) == 0 {
		return nil, nil
	}

	locations := make([]interfaces.StorageBackendLocation, 0, len(uris))
	for _, uri := range uris {
		location, err := interfaces.NewStorageBackendLocation(uri)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	factory := storage.NewStorageBackendFactory(logger)
	if len(locations) == 1 {
		return factory.BackendFor(locations[0])
	}
	return factory.CreateMultiBackend(locations)
}

// LoadSigner returns the signer for --private-key, or a fresh random one.
func LoadSigner(cCtx *cli.Context) (*auth.Signer, error) {
	key := cCtx.String(PrivateKeyFlag.Name)
	if key == "" {
		return auth.NewRandomSigner()
	}
	signer, err := auth.NewSignerFromHex(key)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", PrivateKeyFlag.Name, err)
	}
	return signer, nil
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for API",
	EnvVars: []string{"LISTEN_ADDR"},
}

var StoreFlag = &cli.StringFlag{
	Name:    "store",
	Value:   "pebble:///var/lib/project-nft-registry",
	Usage:   "registry state store: memory://, pebble:///path, badger:///path or sqlite:///path.db",
	EnvVars: []string{"STORE"},
}

var ContentStorageFlag = &cli.StringSliceFlag{
	Name:    "content-storage",
	Usage:   "content storage location for project bundles (file://, s3://, ipfs://, vault://), repeatable",
	EnvVars: []string{"CONTENT_STORAGE"},
}

var ServerURLFlag = &cli.StringFlag{
	Name:    "server",
	Value:   "http://127.0.0.1:8080",
	Usage:   "registry server base URL",
	EnvVars: []string{"REGISTRY_SERVER"},
}

var PrivateKeyFlag = &cli.StringFlag{
	Name:    "private-key",
	Usage:   "hex-encoded secp256k1 key to sign requests with; a random key is used if empty",
	EnvVars: []string{"PRIVATE_KEY"},
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to stay unready before shutting down",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
}

var ServerFlags = []cli.Flag{
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
