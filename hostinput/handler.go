package hostinput

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
)

// Sink consumes decoded host events.
type Sink interface {
	ApplyInput(InputState)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(InputState)

func (f SinkFunc) ApplyInput(s InputState) { f(s) }

// HandleStream reads fixed size records from conn until the peer
// disconnects, feeding each one to sink. A clean disconnect, including one
// between records, returns nil.
func HandleStream(conn net.Conn, sink Sink, logger *slog.Logger) error {
	buf := make([]byte, RecordSize)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("input client disconnected")
				return nil
			}
			return fmt.Errorf("read input state: %w", err)
		}

		var state InputState
		if err := state.UnmarshalBinary(buf); err != nil {
			return fmt.Errorf("unmarshal input state: %w", err)
		}
		sink.ApplyInput(state)
	}
}
