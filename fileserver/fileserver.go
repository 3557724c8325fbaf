// Package fileserver implements the static file service of spec §4.11:
// path resolution and safety checks, directory/index.html handling, MIME
// lookup, precompressed-variant negotiation, conditional GET, and single
// byte-range requests. ServeDir and ServeFile share all of this logic,
// differing only in how the file to serve is located, mirroring the
// original's ServeDir/ServeFile split (serve_dir/mod.rs, serve_file.rs).
package fileserver

import (
	"net/http"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/sofatutor/httpmw/encoding"
)

// Config controls a ServeDir/ServeFile instance.
type Config struct {
	// AppendIndexHTML serves "<dir>/index.html" when a resolved directory
	// has no trailing slash handled by the redirect step and the
	// trailing-slash form maps to a directory.
	AppendIndexHTML bool
	// PrecompressedEncodings lists encodings (in preference order used as
	// a tiebreak against the client's Accept-Encoding qvalues) that may
	// have a ".<ext>"-suffixed sibling file on disk.
	PrecompressedEncodings []encoding.Encoding
	// MIMEOverrides maps a lowercase extension (including the leading
	// dot, e.g. ".wasm") to a MIME type, consulted before the stdlib
	// mime package's own table.
	MIMEOverrides map[string]string
	// Fallback is consulted when the resolved path doesn't exist or is
	// unreadable; if nil, such requests get a plain 404.
	Fallback http.Handler
}

// ServeDir serves files rooted at dir.
func ServeDir(dir string, cfg Config) http.Handler {
	return &service{root: dir, cfg: cfg}
}

// ServeFile always serves the single file at path, ignoring the request
// URI's path entirely (beyond method checking) — the original's
// single-file variant.
func ServeFile(filePath string, cfg Config) http.Handler {
	return &service{singleFile: filePath, cfg: cfg}
}

type service struct {
	root       string
	singleFile string
	cfg        Config
}

func (s *service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.singleFile != "" {
		s.serveResolved(w, r, s.singleFile)
		return
	}

	full, ok := resolvePath(s.root, r.URL.Path)
	if !ok {
		s.notFound(w, r)
		return
	}
	s.serveDirResolved(w, r, full)
}

func (s *service) serveDirResolved(w http.ResponseWriter, r *http.Request, full string) {
	info, err := os.Stat(full)
	if err != nil {
		s.notFoundOrError(w, r, err)
		return
	}

	if info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusTemporaryRedirect)
			return
		}
		if !s.cfg.AppendIndexHTML {
			s.notFound(w, r)
			return
		}
		full = path.Join(full, "index.html")
	}

	s.serveResolved(w, r, full)
}

func (s *service) serveResolved(w http.ResponseWriter, r *http.Request, full string) {
	opened, encUsed, err := openPreferred(full, r.Header.Get("Accept-Encoding"), s.cfg.PrecompressedEncodings)
	if err != nil {
		s.notFoundOrError(w, r, err)
		return
	}
	defer opened.file.Close()

	serveOpenFile(w, r, opened, encUsed, mimeFor(full, s.cfg.MIMEOverrides))
}

func (s *service) notFound(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Fallback != nil {
		s.cfg.Fallback.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func (s *service) notFoundOrError(w http.ResponseWriter, r *http.Request, err error) {
	if os.IsNotExist(err) || os.IsPermission(err) {
		s.notFound(w, r)
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// rankedEncodings sorts enabled by the client's Accept-Encoding qvalues,
// descending, dropping anything the client rejects (q=0) or doesn't
// mention at all when the header contains no wildcard; ties keep enabled's
// original order. Identity is never included — callers try it last,
// unconditionally, as the final fallback.
func rankedEncodings(acceptEncoding string, enabled []encoding.Encoding) []encoding.Encoding {
	if acceptEncoding == "" {
		return append([]encoding.Encoding(nil), enabled...)
	}
	entries := encoding.ParseAcceptEncoding(acceptEncoding)
	q := make(map[encoding.Encoding]encoding.QValue, len(entries))
	wildcardQ, hasWildcard := encoding.QValueMax, false
	for _, e := range entries {
		if e.IsWildcard {
			wildcardQ = e.Q
			hasWildcard = true
			continue
		}
		q[e.Encoding] = e.Q
	}

	type ranked struct {
		enc encoding.Encoding
		q   encoding.QValue
		idx int
	}
	var candidates []ranked
	for i, enc := range enabled {
		qv, mentioned := q[enc]
		switch {
		case mentioned:
			if qv > 0 {
				candidates = append(candidates, ranked{enc, qv, i})
			}
		case hasWildcard:
			if wildcardQ > 0 {
				candidates = append(candidates, ranked{enc, wildcardQ, i})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].q != candidates[j].q {
			return candidates[i].q > candidates[j].q
		}
		return candidates[i].idx < candidates[j].idx
	})

	out := make([]encoding.Encoding, len(candidates))
	for i, c := range candidates {
		out[i] = c.enc
	}
	return out
}
