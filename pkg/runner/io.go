package runner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// lineReader reads lines on a background goroutine so a blocked read never
// prevents the runner from observing context cancellation.
type lineReader struct {
	reader    *bufio.Reader
	lines     chan lineResult
	startOnce sync.Once
}

type lineResult struct {
	text string
	err  error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{reader: bufio.NewReader(r)}
}

func (l *lineReader) pump() {
	defer close(l.lines)
	for {
		text, err := l.reader.ReadString('\n')
		if text != "" {
			l.lines <- lineResult{text: text}
		}
		if err != nil {
			l.lines <- lineResult{err: err}
			return
		}
	}
}

// ReadLine returns the next line without its trailing newline.
func (l *lineReader) ReadLine(ctx context.Context) (string, error) {
	l.startOnce.Do(func() {
		l.lines = make(chan lineResult)
		go l.pump()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}
