package stream

import (
	"reflect"
	"testing"
)

func TestLineAssembler_CompleteLines(t *testing.T) {
	a := &LineAssembler{}

	lines := a.Feed([]byte("one\ntwo\nthree\n"))
	expected := []string{"one", "two", "three"}
	if !reflect.DeepEqual(lines, expected) {
		t.Errorf("Expected %v, got %v", expected, lines)
	}

	if tail, ok := a.Flush(); ok {
		t.Errorf("Expected empty carry after terminated input, got %q", tail)
	}
}

func TestLineAssembler_CarryAcrossChunks(t *testing.T) {
	a := &LineAssembler{}

	lines := a.Feed([]byte(">seq1\nACGTAC"))
	if !reflect.DeepEqual(lines, []string{">seq1"}) {
		t.Errorf("Expected only the complete line, got %v", lines)
	}

	lines = a.Feed([]byte("GTACGT\nTTTT"))
	if !reflect.DeepEqual(lines, []string{"ACGTACGTACGT"}) {
		t.Errorf("Expected carry joined with chunk, got %v", lines)
	}

	tail, ok := a.Flush()
	if !ok {
		t.Fatal("Expected a final partial line")
	}
	if tail != "TTTT" {
		t.Errorf("Expected tail TTTT, got %q", tail)
	}
}

func TestLineAssembler_CRLF(t *testing.T) {
	a := &LineAssembler{}

	lines := a.Feed([]byte("alpha\r\nbeta\r\n"))
	if !reflect.DeepEqual(lines, []string{"alpha", "beta"}) {
		t.Errorf("Expected CR stripped from complete lines, got %v", lines)
	}
}

func TestLineAssembler_SplitMidLine(t *testing.T) {
	a := &LineAssembler{}

	var all []string
	for _, chunk := range []string{"ab", "c\nde", "f"} {
		all = append(all, a.Feed([]byte(chunk))...)
	}
	if !reflect.DeepEqual(all, []string{"abc"}) {
		t.Errorf("Expected single reassembled line, got %v", all)
	}

	tail, ok := a.Flush()
	if !ok || tail != "def" {
		t.Errorf("Expected tail def, got %q (ok=%v)", tail, ok)
	}
}

func TestLineAssembler_WhitespaceOnlyTailDropped(t *testing.T) {
	a := &LineAssembler{}

	a.Feed([]byte("line\n   "))

	if tail, ok := a.Flush(); ok {
		t.Errorf("Expected whitespace-only tail to be dropped, got %q", tail)
	}
}

func TestLineAssembler_FlushKeepsLeadingWhitespace(t *testing.T) {
	a := &LineAssembler{}

	a.Feed([]byte("header\n\tindented tail"))

	tail, ok := a.Flush()
	if !ok {
		t.Fatal("Expected a final partial line")
	}
	if tail != "\tindented tail" {
		t.Errorf("Expected leading tab preserved, got %q", tail)
	}
}

func TestLineAssembler_FlushTrimsTrailingWhitespace(t *testing.T) {
	a := &LineAssembler{}

	a.Feed([]byte("tail with spaces   \t"))

	tail, ok := a.Flush()
	if !ok || tail != "tail with spaces" {
		t.Errorf("Expected trailing whitespace trimmed, got %q (ok=%v)", tail, ok)
	}
}

func TestLineAssembler_FlushResetsCarry(t *testing.T) {
	a := &LineAssembler{}

	a.Feed([]byte("partial"))
	if _, ok := a.Flush(); !ok {
		t.Fatal("Expected first flush to yield the partial line")
	}
	if tail, ok := a.Flush(); ok {
		t.Errorf("Expected second flush to be empty, got %q", tail)
	}
}
