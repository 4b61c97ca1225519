package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// byteRange is an inclusive [Start, End] byte range.
type byteRange struct {
	Start, End int64
}

// parseRangeHeader parses a request Content-Range header of the form
// "bytes=<start>-<end>" (inclusive end). This deliberately diverges from
// RFC 7233: the standard request header is Range, but this server reads
// the range expression off Content-Range instead, matching what downloader
// clients in this network actually send.
func parseRangeHeader(header string) (byteRange, error) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return byteRange{}, fmt.Errorf("expected %q prefix, got %q", prefix, header)
	}
	spec := strings.TrimPrefix(header, prefix)

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return byteRange{}, fmt.Errorf("malformed range %q", spec)
	}

	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return byteRange{}, fmt.Errorf("malformed start in %q: %w", spec, err)
	}
	end, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return byteRange{}, fmt.Errorf("malformed end in %q: %w", spec, err)
	}
	if start < 0 || end < start {
		return byteRange{}, fmt.Errorf("invalid range %q", spec)
	}
	return byteRange{Start: start, End: end}, nil
}

// serveFull streams path's entire contents with Content-Length set, for
// requests that arrive with no Content-Range header.
func (s *Server) serveFull(w http.ResponseWriter, path string) {
	f, err := os.Open(path)
	if err != nil {
		s.metrics.recordRequest("io_error")
		http.Error(w, "cannot open file", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.metrics.recordRequest("io_error")
		http.Error(w, "cannot stat file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	n, _ := io.Copy(w, f)
	s.metrics.recordBytesServed(int(n))
	s.metrics.recordRequest("ok_full")
}

// serveRange streams exactly rng.End-rng.Start+1 bytes of path, with a
// response Content-Range header and 206 status. A range outside the
// file's bounds is rejected with 416.
func (s *Server) serveRange(w http.ResponseWriter, path string, rng byteRange) {
	f, err := os.Open(path)
	if err != nil {
		s.metrics.recordRequest("io_error")
		http.Error(w, "cannot open file", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.metrics.recordRequest("io_error")
		http.Error(w, "cannot stat file", http.StatusInternalServerError)
		return
	}
	total := info.Size()

	if rng.Start >= total || rng.End >= total {
		s.metrics.recordRequest("range_not_satisfiable")
		http.Error(w, "range outside file bounds", http.StatusRequestedRangeNotSatisfiable)
		return
	}

	length := rng.End - rng.Start + 1
	if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
		s.metrics.recordRequest("io_error")
		http.Error(w, "cannot seek file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, total))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)

	n, _ := io.CopyN(w, f, length)
	s.metrics.recordBytesServed(int(n))
	s.metrics.recordRequest("ok_range")
}
