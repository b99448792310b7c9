package auth

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/flashbots/go-utils/signature"
)

const (
	// SignatureHeader carries "<address>:<signature>" over SignedPayload.
	SignatureHeader = "X-Flashbots-Signature"

	// NonceHeader carries the decimal request nonce bound into the signature.
	NonceHeader = "X-Request-Nonce"

	maxSignedBodySize = 1024 * 1024
)

// SignedPayload is the message a request signature covers:
//
//	<METHOD> <path>\n<nonce>\n<body>
func SignedPayload(method, path string, nonce uint64, body []byte) []byte {
	payload := make([]byte, 0, len(method)+len(path)+len(body)+24)
	payload = append(payload, method...)
	payload = append(payload, ' ')
	payload = append(payload, path...)
	payload = append(payload, '\n')
	payload = strconv.AppendUint(payload, nonce, 10)
	payload = append(payload, '\n')
	return append(payload, body...)
}

// VerifySignature verifies the signature header against the request method,
// path, nonce and body and stores the signing address and nonce in the
// request context. Requests without the header pass through unauthenticated;
// requests with a missing nonce or an invalid signature are rejected with 401.
//
// The middleware does not track nonces. Operations that change state consume
// the nonce through the registry (see interfaces.Authorization).
func VerifySignature(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(SignatureHeader)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			nonce, err := strconv.ParseUint(r.Header.Get(NonceHeader), 10, 64)
			if err != nil || nonce == 0 {
				log.Debug("Rejected request nonce", slog.String("nonce", r.Header.Get(NonceHeader)), slog.String("path", r.URL.Path))
				http.Error(w, "Missing or invalid request nonce", http.StatusUnauthorized)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxSignedBodySize+1))
			if err != nil {
				http.Error(w, "Failed to read request body", http.StatusBadRequest)
				return
			}
			if len(body) > maxSignedBodySize {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			signer, err := signature.Verify(header, SignedPayload(r.Method, r.URL.Path, nonce, body))
			if err != nil {
				log.Debug("Rejected request signature", "err", err, slog.String("path", r.URL.Path))
				http.Error(w, "Invalid request signature", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSignedRequest(r.Context(), signer, nonce)))
		})
	}
}
