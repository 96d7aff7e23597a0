package protocol

import "bytes"

// MaxFrameSize bounds one CRLF-terminated frame read from a peer
const MaxFrameSize = 8192

// ScanFrames is a bufio.SplitFunc that frames the byte stream on CRLF,
// keeping the delimiter in the token. A trailing partial frame at EOF is
// discarded.
func ScanFrames(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.Index(data, []byte(CRLF)); i >= 0 {
		return i + 2, data[:i+2], nil
	}
	return 0, nil, nil
}
