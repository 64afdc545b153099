package harness

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/term"
)

// logSink is the durable side of the console: one line-buffered file shared
// by the stdout and stderr tees. The mutex keeps concurrent writes from the
// two channels from interleaving mid-write, so the combined log reads exactly
// as the output would on a single terminal.
type logSink struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (s *logSink) write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(p); err != nil {
		return err
	}
	// Flush unconditionally on every write: a crash immediately after a
	// write must not lose that write from the log.
	return s.w.Flush()
}

func (s *logSink) buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Buffered()
}

// Tee duplicates every write to a terminal sink and a shared durable log
// sink, flushing the log before returning. Terminal-capability queries are
// forwarded to the terminal sink only; the log file's nature never changes
// the caller's formatting decisions.
type Tee struct {
	terminal *os.File
	log      *logSink
}

// Write sends p to both sinks. The write is not reported as successful
// unless both sinks accepted it in full.
func (t *Tee) Write(p []byte) (int, error) {
	n, err := t.terminal.Write(p)
	if err != nil {
		return n, err
	}
	if err := t.log.write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Interactive reports whether the terminal sink is an interactive terminal.
func (t *Tee) Interactive() bool {
	return term.IsTerminal(int(t.terminal.Fd()))
}

// Buffered returns the number of unflushed log bytes. Zero after every
// completed Write.
func (t *Tee) Buffered() int { return t.log.buffered() }

// Console is the harness's output surface: stdout and stderr channels that
// both tee into one combined session log. It is injected into whatever
// component prints, rather than mutating process-global streams.
type Console struct {
	Out *Tee
	Err *Tee
}

// NewConsole wraps stdout and stderr with tees sharing a single log sink.
// The log file handle is opened by the caller once the project directory
// exists; it is never closed by this component. Its lifetime is the process
// lifetime, which is an accepted simplification for a short-lived top-level
// process.
func NewConsole(stdout, stderr, logFile *os.File) *Console {
	sink := &logSink{w: bufio.NewWriter(logFile)}
	return &Console{
		Out: &Tee{terminal: stdout, log: sink},
		Err: &Tee{terminal: stderr, log: sink},
	}
}

// OpenSessionLog opens (appending, creating if needed) the session log file
// inside the project directory. Appending keeps prior iterations' output
// when a session is resumed.
func OpenSessionLog(projectDir, name string) (*os.File, error) {
	return os.OpenFile(filepath.Join(projectDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

var _ io.Writer = (*Tee)(nil)
