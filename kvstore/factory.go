package kvstore

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ruteri/project-nft-registry/interfaces"
)

// Open creates a store from a location URI.
//
// Supported schemes:
//   - memory:// - volatile in-process map
//   - pebble:///path/to/dir - Pebble database directory
//   - badger:///path/to/dir - Badger database directory (badger:// with no path is in-memory)
//   - sqlite:///path/to/file.db - SQLite database file
func Open(locationURI string, log *slog.Logger) (interfaces.KVStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	log.Debug("Opening state store", slog.String("uri", locationURI))

	switch strings.ToLower(u.Scheme) {
	case "memory":
		return NewMemoryStore(), nil
	case "pebble":
		path, err := pathFromURI(u, true)
		if err != nil {
			return nil, err
		}
		return OpenPebble(path, log)
	case "badger":
		path, err := pathFromURI(u, false)
		if err != nil {
			return nil, err
		}
		return OpenBadger(path, log)
	case "sqlite":
		path, err := pathFromURI(u, true)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(path, log)
	default:
		return nil, fmt.Errorf("%w: unsupported store scheme: %q", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// pathFromURI handles both scheme:///absolute/path and scheme://./relative/path.
func pathFromURI(u *url.URL, required bool) (string, error) {
	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" && required {
		return "", fmt.Errorf("%w: empty path in %s", interfaces.ErrInvalidLocationURI, u.String())
	}
	return path, nil
}
