package smtpsubmit

import "strings"

// Reply is a parsed SMTP server reply line.
type Reply struct {
	Code int
	Last bool
	Text string
}

// ParseReply parses a single CRLF-terminated line, as emitted by a
// Reassembler, into a Reply. The three-digit code, separator, and text are
// validated per RFC 5321 4.2.
func ParseReply(line string) (Reply, error) {
	if len(line) < 6 || !strings.HasSuffix(line, "\r\n") {
		return Reply{}, ErrMalformedReply
	}
	for i := 0; i < 3; i++ {
		if line[i] < '0' || line[i] > '9' {
			return Reply{}, ErrMalformedReply
		}
	}
	code := int(line[0]-'0')*100 + int(line[1]-'0')*10 + int(line[2]-'0')

	var last bool
	switch line[3] {
	case '-':
		last = false
	case ' ':
		last = true
	default:
		return Reply{}, ErrMalformedReply
	}

	return Reply{
		Code: code,
		Last: last,
		Text: line[4 : len(line)-2],
	}, nil
}
