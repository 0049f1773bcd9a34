package smtpsubmit

import "testing"

func TestParseReplySingleLine(t *testing.T) {
	r, err := ParseReply("250 OK\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Code != 250 || !r.Last || r.Text != "OK" {
		t.Fatalf("got %+v", r)
	}
}

func TestParseReplyContinuationLine(t *testing.T) {
	r, err := ParseReply("250-PIPELINING\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Code != 250 || r.Last {
		t.Fatalf("got %+v", r)
	}
}

func TestParseReplyEmptyText(t *testing.T) {
	r, err := ParseReply("220 \r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text != "" {
		t.Fatalf("expected empty text, got %q", r.Text)
	}
}

func TestParseReplyRejectsMissingCRLF(t *testing.T) {
	if _, err := ParseReply("250 OK\n"); err == nil {
		t.Fatal("expected error for bare LF terminator")
	}
}

func TestParseReplyRejectsNonDigitCode(t *testing.T) {
	cases := []string{"25a OK\r\n", "-50 OK\r\n", "2-0 OK\r\n"}
	for _, c := range cases {
		if _, err := ParseReply(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestParseReplyRejectsBadSeparator(t *testing.T) {
	if _, err := ParseReply("250:OK\r\n"); err == nil {
		t.Fatal("expected error for non-space/dash separator")
	}
}

func TestParseReplyRejectsTooShort(t *testing.T) {
	if _, err := ParseReply("25\r\n"); err == nil {
		t.Fatal("expected error for too-short line")
	}
}

func TestParseReplyMultiDigitCode(t *testing.T) {
	r, err := ParseReply("550 Mailbox unavailable\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Code != 550 {
		t.Fatalf("got code %d", r.Code)
	}
}
