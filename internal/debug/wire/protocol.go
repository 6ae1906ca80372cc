// Package wire implements the debug link: a framed JSON protocol between the
// session controller and the debuggee-side runner.
//
// Requests are fire-and-forget; the runner never acknowledges them directly.
// Everything inbound is an event, decoded into the controller's closed event
// vocabulary.
package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxFrameSize is the maximum allowed content length for a frame (10MB).
const MaxFrameSize = 10 * 1024 * 1024

// writeFrame writes one Content-Length framed message.
func writeFrame(w io.Writer, content []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(content))

	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write content: %w", err)
	}

	return nil
}

// readFrame reads one Content-Length framed message.
func readFrame(r *bufio.Reader) ([]byte, error) {
	var contentLength int

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break // End of headers
		}

		parts := strings.SplitN(line, ": ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid header: %s", line)
		}

		if strings.EqualFold(parts[0], "content-length") {
			length, err := strconv.Atoi(parts[1])
			if err != nil {
				return nil, fmt.Errorf("invalid content-length: %w", err)
			}
			if length < 0 || length > MaxFrameSize {
				return nil, fmt.Errorf("content-length %d exceeds maximum allowed %d", length, MaxFrameSize)
			}
			contentLength = length
		}
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	content := make([]byte, contentLength)
	if _, err := io.ReadFull(r, content); err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	return content, nil
}
