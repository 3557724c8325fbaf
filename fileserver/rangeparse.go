package fileserver

import (
	"strconv"
	"strings"
)

// byteRange is an inclusive [Start, End] byte range, 0-indexed.
type byteRange struct {
	Start, End int64
}

// parseRange parses a single-range "Range: bytes=..." header against a
// resource of the given size. It returns (range, true, true) for a valid,
// satisfiable single range; (zero, false, true) if the header is absent or
// not a bytes-range (served as a plain 200); and (zero, _, false) if the
// header names more than one range (unsupported, per spec §4.11 step 9 —
// no multipart support) or the single range is unsatisfiable, in both
// cases signaling the caller to respond 416.
func parseRange(header string, size int64) (r byteRange, present bool, satisfiable bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return byteRange{}, false, true
	}
	specs := strings.Split(header[len(prefix):], ",")
	if len(specs) != 1 {
		return byteRange{}, true, false
	}

	spec := strings.TrimSpace(specs[0])
	start, end, ok := parseOneRange(spec, size)
	if !ok {
		return byteRange{}, true, false
	}
	return byteRange{Start: start, End: end}, true, true
}

func parseOneRange(spec string, size int64) (start, end int64, ok bool) {
	if size <= 0 {
		return 0, 0, false
	}
	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return 0, 0, false
	}
	startStr, endStr := spec[:dash], spec[dash+1:]

	if startStr == "" {
		// Suffix range: last N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, true
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}
	if endStr == "" {
		return start, size - 1, true
	}
	end, err = strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start {
		return 0, 0, false
	}
	if end >= size {
		end = size - 1
	}
	return start, end, true
}
