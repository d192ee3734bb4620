package console

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Watch reads the port until ctx is done, passing each status line counter to
// onLine along with the number of counters skipped since the previous line
func Watch(ctx context.Context, port io.Reader, onLine func(n, skipped uint32)) error {
	var seq Sequence
	demux := &Demux{
		OnLine: func(n uint32) { onLine(n, seq.Observe(n)) },
	}

	buf := make([]byte, 256)
	for ctx.Err() == nil {
		n, err := port.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read: %w", err)
		}
		demux.Write(buf[:n])
	}
	return nil
}
