package stream

import "strings"

// LineAssembler reassembles raw byte chunks into complete text lines. The
// trailing partial line of each chunk is carried over until a later chunk or
// Flush completes it.
type LineAssembler struct {
	carry string
}

// Feed splits carry+chunk on line terminators and returns the complete lines
// in file order. The final, possibly-incomplete segment becomes the new carry
// and is never returned here.
func (a *LineAssembler) Feed(chunk []byte) []string {
	parts := strings.Split(a.carry+string(chunk), "\n")

	a.carry = parts[len(parts)-1]

	lines := parts[:len(parts)-1]
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// Flush returns the carried partial line at end of input with trailing
// whitespace removed. A whitespace-only carry does not count as a line, which
// avoids a spurious empty trailing line for files ending in a terminator.
// Leading whitespace is content and is kept.
func (a *LineAssembler) Flush() (string, bool) {
	tail := strings.TrimRight(a.carry, " \t\r\n")
	a.carry = ""

	if tail == "" {
		return "", false
	}
	return tail, true
}
