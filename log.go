package core

import "github.com/rs/zerolog"

type Log interface {
	Info() *zerolog.Event
	Debug() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}

// ZeroLog adapts a zerolog.Logger to the Log interface.
type ZeroLog struct {
	Logger zerolog.Logger
}

func (z ZeroLog) Info() *zerolog.Event {
	return z.Logger.Info()
}

func (z ZeroLog) Debug() *zerolog.Event {
	return z.Logger.Debug()
}

func (z ZeroLog) Warn() *zerolog.Event {
	return z.Logger.Warn()
}

func (z ZeroLog) Error() *zerolog.Event {
	return z.Logger.Error()
}

// NopLog returns a Log that discards every event.
func NopLog() Log {
	return ZeroLog{Logger: zerolog.Nop()}
}
