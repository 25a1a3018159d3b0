package models

// ProcessResult is what one subprocess invocation produced. It is owned by
// the invoking call and inspected once.
type ProcessResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the process exited with status 0.
func (p *ProcessResult) Success() bool {
	return p != nil && p.ExitCode == 0
}
