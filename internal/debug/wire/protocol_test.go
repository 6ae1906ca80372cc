package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	content := []byte(`{"type":"event","event":"bootstrap"}`)

	if err := writeFrame(&buf, content); err != nil {
		t.Fatalf("writeFrame() error: %v", err)
	}

	wantHeader := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(content))
	if !strings.HasPrefix(buf.String(), wantHeader) {
		t.Errorf("frame = %q, want prefix %q", buf.String(), wantHeader)
	}

	got, err := readFrame(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("readFrame() error: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("readFrame() = %q, want %q", got, content)
	}
}

func TestReadFrameMultiple(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 3; i++ {
		if err := writeFrame(&buf, []byte(fmt.Sprintf(`{"seq":%d}`, i))); err != nil {
			t.Fatalf("writeFrame() error: %v", err)
		}
	}

	r := bufio.NewReader(&buf)
	for i := 0; i < 3; i++ {
		got, err := readFrame(r)
		if err != nil {
			t.Fatalf("readFrame() %d error: %v", i, err)
		}
		want := fmt.Sprintf(`{"seq":%d}`, i)
		if string(got) != want {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}
}

func TestReadFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing content-length", "\r\n"},
		{"invalid header", "garbage\r\n\r\n"},
		{"invalid length", "Content-Length: abc\r\n\r\n"},
		{"oversize length", fmt.Sprintf("Content-Length: %d\r\n\r\n", MaxFrameSize+1)},
		{"truncated content", "Content-Length: 10\r\n\r\nshort"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readFrame(bufio.NewReader(strings.NewReader(tt.input)))
			if err == nil {
				t.Error("readFrame() accepted a bad frame")
			}
		})
	}
}
