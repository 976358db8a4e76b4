package live

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/go-stomp/stomp/v3/frame"
)

// encodeFrame serializes one frame for a single websocket message.
func encodeFrame(f *frame.Frame) ([]byte, error) {
	if len(f.Body) > 0 {
		if _, ok := f.Header.Contains(frame.ContentLength); !ok {
			f.Header.Add(frame.ContentLength, strconv.Itoa(len(f.Body)))
		}
	}
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeFrame reads the frame carried by one websocket message. A message
// made only of end-of-lines is a heartbeat and yields a nil frame.
func decodeFrame(data []byte) (*frame.Frame, error) {
	r := frame.NewReader(bytes.NewReader(data))
	for {
		f, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if f != nil {
			return f, nil
		}
	}
}
