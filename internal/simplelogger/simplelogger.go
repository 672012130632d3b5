package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"
)

var mu sync.Mutex

// Enabled reports whether logging is active, so callers can skip building
// expensive log arguments.
func Enabled() bool {
	return os.Getenv("TREEDIFF_LOG_FILE") != ""
}

// Log is a minimal printf-style logger for debug traces. It appends a
// timestamped line to the file named by the TREEDIFF_LOG_FILE environment
// variable.
//
// If TREEDIFF_LOG_FILE is unset/empty or the path can't be opened as a file,
// Log is a no-op.
func Log(format string, args ...any) {
	path := os.Getenv("TREEDIFF_LOG_FILE")
	if path == "" {
		return
	}

	// Serialize open/write/close to reduce interleaving within a single process.
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s ", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}
