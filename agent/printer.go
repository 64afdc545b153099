package agent

import (
	"fmt"
	"strings"

	"github.com/martinemde/longhaul/harness"
)

// EventPrinter renders session events to the console. Because the console
// tees to the session log, everything printed here is also the durable
// record of the run.
type EventPrinter struct {
	console *harness.Console
}

// NewEventPrinter creates a printer over the given console.
func NewEventPrinter(console *harness.Console) *EventPrinter {
	return &EventPrinter{console: console}
}

// Consume drains the event channel until it closes. Run it in its own
// goroutine and wait for it after Session.Close.
func (p *EventPrinter) Consume(events <-chan Event) {
	for event := range events {
		p.print(event)
	}
}

func (p *EventPrinter) print(event Event) {
	switch event.Kind {
	case EventSessionStart:
		fmt.Fprintf(p.console.Out, "\n=== Session %s started (model: %v) ===\n",
			shortID(event.SessionID), event.Data["model"])
	case EventSessionEnd:
		fmt.Fprintf(p.console.Out, "=== Session %s ended (%v) ===\n",
			shortID(event.SessionID), event.Data["reason"])
	case EventAssistantText:
		if text, ok := event.Data["text"].(string); ok && text != "" {
			fmt.Fprintf(p.console.Out, "\n%s\n", text)
		}
	case EventToolCallStart:
		fmt.Fprintf(p.console.Out, "  [%v] %s\n",
			event.Data["name"], summarizeArguments(event.Data["arguments"]))
	case EventToolCallEnd:
		if errMsg, ok := event.Data["error"].(string); ok {
			fmt.Fprintf(p.console.Err, "  [%v] error: %s\n", event.Data["name"], errMsg)
		}
	case EventRoundLimit:
		fmt.Fprintf(p.console.Out, "  Round limit reached after %v tool rounds.\n", event.Data["round"])
	case EventLoopWarning:
		fmt.Fprintf(p.console.Out, "  Repetition detected; nudging the session.\n")
	case EventContextUsage:
		fmt.Fprintf(p.console.Out, "  Context usage high: %v of %v tokens.\n",
			event.Data["total_tokens"], event.Data["window"])
	case EventError:
		fmt.Fprintf(p.console.Err, "  Error: %v\n", event.Data["error"])
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// summarizeArguments renders tool arguments on one line, truncated so a
// large write_file call does not flood the terminal.
func summarizeArguments(v interface{}) string {
	s, _ := v.(string)
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
