package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() Logger {
	zlog := zerolog.New(io.Discard)
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}
