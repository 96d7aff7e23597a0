package protocol

import (
	"fmt"
	"io"
	"time"
)

// TraceTimeFormat is the timestamp layout used in wire-trace lines
const TraceTimeFormat = "2006-01-02T15:04:05.000"

// Trace writes one raw-frame trace line in the form
// [<sender-ip:port>,<receiver-ip:port>,<timestamp>] <raw-frame>. The frame's
// own CRLF terminates the line.
func Trace(w io.Writer, sender, receiver string, at time.Time, frame string) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[%s,%s,%s] %s", sender, receiver, at.Format(TraceTimeFormat), frame)
}
