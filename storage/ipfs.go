package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/project-nft-registry/interfaces"
)

// maxIPFSBlockSize is the largest chunk an IPFS node accepts. Content up to
// this size is added as one raw block, whose CID is the content pointer.
const maxIPFSBlockSize = 1 << 20

// IPFSBackend implements a storage backend using an IPFS node's HTTP API.
// Content is added as a single raw block so the node's CID equals the
// locally computed content pointer.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates a new IPFS storage backend connected to the specified host and port.
func NewIPFSBackend(host, port string, timeout time.Duration, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)
	sh := shell.NewShellWithClient(apiURL, &http.Client{Timeout: timeout})

	return &IPFSBackend{
		shell:       sh,
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout),
	}, nil
}

// Fetch retrieves data from IPFS by its content pointer.
// Returns ErrContentNotFound if the content doesn't exist or ErrBackendUnavailable
// if the IPFS node is not accessible.
func (b *IPFSBackend) Fetch(ctx context.Context, pointer string) ([]byte, error) {
	start := time.Now()
	if _, err := ParsePointer(pointer); err != nil {
		return nil, err
	}
	path := "/ipfs/" + pointer

	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port))
		return nil, interfaces.ErrBackendUnavailable
	}

	reader, err := b.shell.Cat(path)
	if err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "no link named") {
			b.log.Debug("Content not found in IPFS",
				slog.String("path", path),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrContentNotFound
		}

		b.log.Error("Failed to fetch data from IPFS",
			slog.String("path", path),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to fetch data from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data from IPFS: %w", err)
	}
	if err := VerifyContent(pointer, data); err != nil {
		return nil, err
	}

	b.log.Debug("Fetched content from IPFS",
		slog.String("path", path),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Store adds and pins data in IPFS and returns its content pointer.
// Returns ErrContentTooLarge for data that does not fit one block and
// ErrBackendUnavailable if the IPFS node is not accessible.
func (b *IPFSBackend) Store(ctx context.Context, data []byte) (string, error) {
	if len(data) > maxIPFSBlockSize {
		return "", fmt.Errorf("%w: %d bytes exceeds the %d byte IPFS block limit", ErrContentTooLarge, len(data), maxIPFSBlockSize)
	}
	pointer, err := ComputePointer(data)
	if err != nil {
		return "", err
	}

	if !b.shell.IsUp() {
		return "", interfaces.ErrBackendUnavailable
	}

	ipfsCID, err := b.shell.Add(bytes.NewReader(data),
		shell.CidVersion(1),
		shell.RawLeaves(true),
		shell.Pin(true),
		singleChunk)
	if err != nil {
		return "", fmt.Errorf("failed to add data to IPFS: %w", err)
	}

	if ipfsCID != pointer {
		if err := b.shell.Unpin("/ipfs/" + ipfsCID); err != nil {
			b.log.Warn("Failed to unpin mismatched IPFS content",
				slog.String("cid", ipfsCID),
				"err", err)
		}
		return "", fmt.Errorf("IPFS returned %s for content %s", ipfsCID, pointer)
	}

	b.log.Debug("Stored content in IPFS",
		slog.String("pointer", pointer),
		slog.Int("size", len(data)))

	return pointer, nil
}

func singleChunk(rb *shell.RequestBuilder) error {
	rb.Option("chunker", fmt.Sprintf("size-%d", maxIPFSBlockSize))
	return nil
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this storage backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}
