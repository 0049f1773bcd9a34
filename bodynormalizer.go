package smtpsubmit

import "strings"

// NormalizeBody prepares an arbitrary message body for transmission inside
// a DATA payload, per RFC 5321 4.5.2: CRLF line endings, dot-stuffing, and,
// for a non-empty body, a guaranteed trailing CRLF (an empty body is
// returned empty). Adapted from the teacher's dotStuff in
// client_send.go, generalized to also rewrite line endings rather than
// assume the caller already supplied CRLF.
func NormalizeBody(body string) string {
	if body == "" {
		// Nothing to terminate.
		return ""
	}

	crlf := make([]byte, 0, len(body)+2)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				crlf = append(crlf, '\r', '\n')
				i++
				continue
			}
			// bare CR, dropped
		case '\n':
			crlf = append(crlf, '\r', '\n')
		default:
			crlf = append(crlf, body[i])
		}
	}

	lines := strings.Split(string(crlf), "\r\n")
	for i, line := range lines {
		if strings.HasPrefix(line, ".") {
			lines[i] = "." + line
		}
	}
	out := strings.Join(lines, "\r\n")

	if !strings.HasSuffix(out, "\r\n") {
		out += "\r\n"
	}
	return out
}
