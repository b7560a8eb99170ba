package audio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tcolgate/mp3"
)

// Duration returns the playing time of the MP3 file at path by summing its
// frame durations. Files without any decodable frame are an error.
func Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return DurationOf(bufio.NewReader(f))
}

// DurationOf reads MP3 frames from r until EOF.
func DurationOf(r io.Reader) (time.Duration, error) {
	var (
		dec     = mp3.NewDecoder(r)
		frame   mp3.Frame
		skipped int
		total   time.Duration
		frames  int
	)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if frames == 0 {
				return 0, fmt.Errorf("not an mp3 stream: %w", err)
			}
			break
		}
		total += frame.Duration()
		frames++
	}
	if frames == 0 {
		return 0, errors.New("not an mp3 stream: no frames")
	}
	return total, nil
}
