package server

import (
	"fmt"
	"time"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// OverlapConsole wraps an overlap handler so that every overlap is also
// reported to a render's console. Messages are dropped when the channel
// is full; workers never wait on the client.
func OverlapConsole(consoleChan chan<- ConsoleMessage, next rt.OverlapHandler) rt.OverlapHandler {
	if next == nil {
		next = rt.DefaultOverlap
	}
	return func(ray core.Ray, first, second *rt.Region, span rt.Span) rt.Resolution {
		res := next(ray, first, second, span)

		level := "warning"
		if res == rt.ResolveError {
			level = "error"
		}
		msg := ConsoleMessage{
			Message: fmt.Sprintf("regions %s and %s overlap over %.4g between %.6g and %.6g (%s)",
				first.Name, second.Name, span.Len(), span.In, span.Out, res),
			Timestamp: time.Now(),
			Level:     level,
		}

		select {
		case consoleChan <- msg:
		default:
			// Channel full, skip (don't block)
		}
		return res
	}
}
