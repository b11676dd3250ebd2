package document

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

const sniffLen = 512

// isBinary samples the head of content. A NUL byte, or more than 10% of the
// first 100 runes being invalid or unprintable, marks it as binary.
func isBinary(content []byte) bool {
	head := content[:min(len(content), sniffLen)]
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}

	const sampleSize = 100
	var bad, total int
	for len(head) > 0 && total < sampleSize {
		r, size := utf8.DecodeRune(head)
		if r == utf8.RuneError || (!unicode.IsPrint(r) && !unicode.IsSpace(r)) {
			bad++
		}
		head = head[size:]
		total++
	}

	if total == 0 {
		return false
	}
	return float64(bad)/float64(total) > 0.1
}
