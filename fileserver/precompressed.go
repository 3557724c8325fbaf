package fileserver

import (
	"os"

	"github.com/sofatutor/httpmw/encoding"
)

var precompressedExt = map[encoding.Encoding]string{
	encoding.Gzip:    ".gz",
	encoding.Brotli:  ".br",
	encoding.Deflate: ".zz",
	encoding.Zstd:    ".zst",
}

// openedFile is the file actually opened to satisfy a request — either a
// precompressed sibling or the identity file — plus its stat info.
type openedFile struct {
	file *os.File
	info os.FileInfo
}

// openPreferred tries full+ext for each encoding in enabled, ranked by
// acceptEncoding's qvalues (best first), falling back on not-found or
// permission-denied to the next-preferred encoding and finally to the
// identity file itself, per spec §4.11 step 7.
func openPreferred(full, acceptEncoding string, enabled []encoding.Encoding) (openedFile, encoding.Encoding, error) {
	var lastErr error
	for _, enc := range rankedEncodings(acceptEncoding, enabled) {
		ext, ok := precompressedExt[enc]
		if !ok {
			continue
		}
		f, info, err := openAndStat(full + ext)
		if err == nil {
			return openedFile{file: f, info: info}, enc, nil
		}
		if !os.IsNotExist(err) && !os.IsPermission(err) {
			return openedFile{}, encoding.Identity, err
		}
		lastErr = err
	}

	f, info, err := openAndStat(full)
	if err != nil {
		if lastErr != nil && (os.IsNotExist(err) || os.IsPermission(err)) {
			return openedFile{}, encoding.Identity, lastErr
		}
		return openedFile{}, encoding.Identity, err
	}
	return openedFile{file: f, info: info}, encoding.Identity, nil
}

func openAndStat(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, os.ErrNotExist
	}
	return f, info, nil
}
