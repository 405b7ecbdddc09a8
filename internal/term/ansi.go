package term

// StripANSI removes ANSI escape sequences from s so that plain-text matching
// is reliable. CSI sequences (ESC '[') are skipped through their alphabetic
// terminator; OSC sequences (ESC ']') are skipped through BEL or ST. The
// contract is single-call: sequences split across separate inputs are not
// reassembled.
func StripANSI(s string) string {
	out := make([]rune, 0, len(s))
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		c := runes[i]
		if c != '\x1b' {
			out = append(out, c)
			i++
			continue
		}
		i++
		if i >= len(runes) {
			break
		}
		switch runes[i] {
		case '[':
			// CSI: skip parameters until the alphabetic final byte.
			i++
			for i < len(runes) {
				ch := runes[i]
				i++
				if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
					break
				}
			}
		case ']':
			// OSC: terminated by BEL or ST. Matching the backslash alone is
			// enough since any preceding ESC was already consumed.
			i++
			for i < len(runes) {
				ch := runes[i]
				i++
				if ch == '\x07' || ch == '\\' {
					break
				}
			}
		default:
			// Bare ESC followed by something else: drop only the ESC.
		}
	}
	return string(out)
}
