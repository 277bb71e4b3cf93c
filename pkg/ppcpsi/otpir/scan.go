package otpir

import (
	"bufio"
	"bytes"
	"io"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcot/baseot"
)

// ScanCandidates walks r line by line (CR, LF and CRLF line endings all
// accepted by its split function), splitting each line at its first comma
// into {id, full-line record}. Per §4.11 every candidate is handed to
// baseot.Receiver.PrepareDataset for the actual hash-prefix filter; no
// raw-bytes memcmp pre-filter is applied here since the file's ids are
// opaque hash-domain tokens, not human-readable prefixes (see DESIGN.md).
//
// golang.org/x/exp/mmap never appears in the retrieved corpus, so the scan
// streams the file instead of memory-mapping it, the same way session.go
// counts an upload via a plain io.Writer rather than an mmap-backed
// buffer.
func ScanCandidates(r io.Reader) ([]baseot.Candidate, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
			if data[i] == '\r' && i+1 == len(data) && !atEOF {
				return 0, nil, nil // a following '\n' may still arrive
			}
			if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF && len(data) > 0 {
			return len(data), data, nil
		}
		return 0, nil, nil
	})

	var out []baseot.Candidate
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		idx := bytes.IndexByte(line, ',')
		if idx < 0 {
			continue
		}
		id := append([]byte{}, line[:idx]...)
		record := append([]byte{}, line...)
		out = append(out, baseot.Candidate{ID: id, Record: record})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
