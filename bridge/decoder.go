package bridge

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
)

// lineDecoder turns a stream of arbitrarily-sized byte chunks into discrete
// classified lines. It implements io.Writer so it can be attached directly as
// a process output stream.
//
// A line whose trimmed content starts with '{' is treated as protocol traffic
// and parsed as JSON; everything else non-empty is diagnostic text. This
// heuristic cannot distinguish a log line that happens to start with a brace
// from a genuine protocol frame; workers are expected to keep structured
// frames and chatter on separate streams, but the bridge tolerates mixing.
//
// When classify is false every line is diagnostic text, which is how worker
// stderr is handled.
type lineDecoder struct {
	classify bool

	onResponse   func(response)
	onDiagnostic func(string)
	onError      func(*TransportError)

	mu  sync.Mutex
	buf bytes.Buffer
}

// Write appends a chunk to the accumulation buffer and emits every complete
// line it now holds. The trailing partial segment, if any, stays buffered
// until more bytes or a flush arrive, so behavior is identical no matter how
// chunk boundaries fall, including splits inside a multi-byte rune.
func (d *lineDecoder) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.Write(p)
	for {
		b := d.buf.Bytes()
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			return len(p), nil
		}
		line := string(b[:i])
		d.buf.Next(i + 1)
		d.consume(line)
	}
}

// flush drains the accumulation buffer, treating any retained partial
// segment as a final line. Called once when the worker's stream ends.
func (d *lineDecoder) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.buf.Len() == 0 {
		return
	}
	line := d.buf.String()
	d.buf.Reset()
	d.consume(line)
}

func (d *lineDecoder) consume(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if !d.classify || line[0] != '{' {
		d.onDiagnostic(line)
		return
	}
	var resp response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		d.onError(&TransportError{Line: line, Err: err})
		return
	}
	d.onResponse(resp)
}
