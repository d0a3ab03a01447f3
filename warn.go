package tiffcomposite

import (
	"fmt"
	"os"
)

// Warner receives non-fatal diagnostics raised while building or
// serializing the tree. In this package only DataEntry's strip validation
// (count mismatch, non-contiguous strips, strips outside their buffer)
// reports through it. Neither the
// teacher nor any other repo in the corpus pulls in a logging library
// (SPEC_FULL.md §2); matching that, Warner is a one-method interface a
// caller can implement however it logs, with a stderr-printing default.
type Warner interface {
	Warnf(format string, args ...any)
}

// StderrWarner is the zero-configuration default: every warning goes to
// os.Stderr via fmt.Fprintf, the same destination the teacher's own
// occasional diagnostic prints use.
type StderrWarner struct{}

func (StderrWarner) Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// nopWarner silently discards everything; used where a collaborator was
// constructed without an explicit Warner.
type nopWarner struct{}

func (nopWarner) Warnf(string, ...any) {}

func warnerOrNop(w Warner) Warner {
	if w == nil {
		return nopWarner{}
	}
	return w
}
