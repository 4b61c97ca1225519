// Package subfileerr defines the error taxonomy shared by every layer of the
// subfile exchange: chunking, the manifest codec, the content store adapter,
// the server, the availability prober, and the downloader engine.
//
// Sentinels are designed to be wrapped with fmt.Errorf("...: %w", err) at
// each layer boundary and unwrapped with errors.Is by callers that need to
// branch on the failure kind (e.g. the downloader's per-chunk retry loop).
package subfileerr

import "errors"

var (
	// ErrConfig marks malformed CLI arguments or missing configuration.
	ErrConfig = errors.New("config error")

	// ErrStore marks a content store cat/add failure.
	ErrStore = errors.New("store error")
	// ErrTimeout marks a store operation that exceeded its deadline.
	ErrTimeout = errors.New("store timeout")
	// ErrNotFound marks content absent from the store.
	ErrNotFound = errors.New("content not found")

	// ErrManifest marks a schema mismatch or unexpected manifest value.
	ErrManifest = errors.New("manifest error")

	// ErrIO marks a filesystem read/write failure.
	ErrIO = errors.New("io error")

	// ErrTransport marks an HTTP request failure, unexpected status, or a
	// response missing the Content-Range header.
	ErrTransport = errors.New("transport error")

	// ErrIntegrity marks a chunk whose digest does not match the manifest.
	ErrIntegrity = errors.New("integrity error")

	// ErrAuth marks a missing or incorrect bearer token.
	ErrAuth = errors.New("auth error")

	// ErrUnavailable marks a manifest with no advertising endpoints.
	ErrUnavailable = errors.New("no endpoints advertise this manifest")

	// ErrExhaustedRetries marks a chunk that never succeeded within its
	// retry budget.
	ErrExhaustedRetries = errors.New("exhausted retries")
)
