package domain

import "fmt"

// GenerationError reports exhausted generation retries. It carries the last
// raw model output (truncated for log size, never dropped entirely) so the
// caller can surface a diagnosable, client-correctable failure.
type GenerationError struct {
	Attempts int
	LastRaw  string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("model returned invalid invoice JSON after %d attempts: %v (raw: %s)",
		e.Attempts, e.Err, e.LastRaw)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
