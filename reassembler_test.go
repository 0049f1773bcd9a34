package smtpsubmit

import "testing"

func TestReassemblerSingleFeedMultipleLines(t *testing.T) {
	r := NewReassembler(0)
	lines, err := r.Feed([]byte("250-mail.example.com\r\n250 HELP\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 || lines[0] != "250-mail.example.com\r\n" || lines[1] != "250 HELP\r\n" {
		t.Fatalf("got %q", lines)
	}
}

func TestReassemblerSplitAcrossFeeds(t *testing.T) {
	r := NewReassembler(0)
	if lines, err := r.Feed([]byte("220 mail.example")); err != nil || len(lines) != 0 {
		t.Fatalf("expected no lines yet, got %q err %v", lines, err)
	}
	lines, err := r.Feed([]byte(".com Ready\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0] != "220 mail.example.com Ready\r\n" {
		t.Fatalf("got %q", lines)
	}
}

func TestReassemblerSplitBetweenCRAndLF(t *testing.T) {
	r := NewReassembler(0)
	if lines, _ := r.Feed([]byte("250 OK\r")); len(lines) != 0 {
		t.Fatalf("bare CR must not terminate a line, got %q", lines)
	}
	lines, err := r.Feed([]byte("\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0] != "250 OK\r\n" {
		t.Fatalf("got %q", lines)
	}
}

func TestReassemblerIgnoresBareLF(t *testing.T) {
	r := NewReassembler(0)
	lines, err := r.Feed([]byte("250 OK\n250 also OK\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0] != "250 OK\n250 also OK\r\n" {
		t.Fatalf("bare LF should not split a line, got %q", lines)
	}
}

func TestReassemblerLineTooLong(t *testing.T) {
	r := NewReassembler(8)
	_, err := r.Feed([]byte("220 this line has no terminator yet"))
	if err != ErrLineTooLong {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
}

func TestReassemblerPrefixProperty(t *testing.T) {
	whole := "220 Ready\r\n250-one\r\n250 two\r\n"
	r := NewReassembler(0)
	var got []string
	for i := 0; i < len(whole); i++ {
		lines, err := r.Feed([]byte{whole[i]})
		if err != nil {
			t.Fatalf("unexpected error at byte %d: %v", i, err)
		}
		got = append(got, lines...)
	}
	if len(got) != 3 || got[0] != "220 Ready\r\n" || got[1] != "250-one\r\n" || got[2] != "250 two\r\n" {
		t.Fatalf("byte-at-a-time feed mismatch: %q", got)
	}
}
