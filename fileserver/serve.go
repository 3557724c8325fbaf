package fileserver

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/sofatutor/httpmw/encoding"
)

// serveOpenFile writes the response for an already-opened file: conditional
// checks, range negotiation, and the final 200/206/304/412/416, per spec
// §4.11 steps 8-10.
func serveOpenFile(w http.ResponseWriter, r *http.Request, opened openedFile, enc encoding.Encoding, mimeType string) {
	lastModified := opened.info.ModTime()
	if status, short := checkModified(r, lastModified); short {
		w.Header().Set("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
		w.WriteHeader(status)
		return
	}

	size := opened.info.Size()
	rng, hasRange, satisfiable := parseRange(r.Header.Get("Range"), size)
	if hasRange && !satisfiable {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	h := w.Header()
	h.Set("Content-Type", mimeType)
	h.Set("Accept-Ranges", "bytes")
	h.Set("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
	if enc != encoding.Identity {
		h.Set("Content-Encoding", enc.String())
	}

	status := http.StatusOK
	start, length := int64(0), size

	if hasRange {
		start = rng.Start
		length = rng.End - rng.Start + 1
		status = http.StatusPartialContent
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, size))
		if _, err := opened.file.Seek(start, io.SeekStart); err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	h.Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.CopyN(w, opened.file, length)
}
