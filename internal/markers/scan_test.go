package markers

import (
	"errors"
	"testing"
)

func TestScanTwoWay(t *testing.T) {
	data := "before\n<<<<<<< ours\nours content\n=======\ntheirs content\n>>>>>>> theirs\nafter\n"

	blocks, err := Scan([]byte(data))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(blocks))
	}
	if blocks[0] != (Block{StartLine: 2, EndLine: 6}) {
		t.Errorf("block = %+v", blocks[0])
	}
}

func TestScanDiff3(t *testing.T) {
	data := "<<<<<<< ours\na\n||||||| base\nb\n=======\nc\n>>>>>>> theirs"

	blocks, err := Scan([]byte(data))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(blocks) != 1 || !blocks[0].HasBase || blocks[0].EndLine != 7 {
		t.Fatalf("blocks = %+v", blocks)
	}
}

func TestScanMultiple(t *testing.T) {
	data := "x\n<<<<<<< a\n1\n=======\n2\n>>>>>>> b\ny\n<<<<<<< a\n3\n=======\n4\n>>>>>>> b\n"

	blocks, err := Scan([]byte(data))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(blocks))
	}
	if blocks[1].StartLine != 8 || blocks[1].EndLine != 12 {
		t.Errorf("second block = %+v", blocks[1])
	}
}

func TestScanIgnoresMarkersMidLine(t *testing.T) {
	blocks, err := Scan([]byte("-- comment <<<<<<< not a conflict\n"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(blocks))
	}
}

func TestScanMalformed(t *testing.T) {
	tests := map[string]string{
		"no_mid":      "<<<<<<< ours\na\n>>>>>>> theirs\n",
		"no_end":      "<<<<<<< ours\na\n=======\nb\n",
		"no_mid_base": "<<<<<<< ours\na\n||||||| base\nb\n",
		"truncated":   "<<<<<<< ours\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Scan([]byte(data))
			if !errors.Is(err, ErrMalformedConflict) {
				t.Fatalf("expected ErrMalformedConflict, got %v", err)
			}
		})
	}
}
