package pipeline

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// loneNewline matches a newline with no newline on either side.
var loneNewline = regexp2.MustCompile(`(?<!\n)\n(?!\n)`, regexp2.None)

// Normalize turns every newline that is not part of a run of newlines into a
// space, then trims surrounding whitespace. Paragraph breaks ("\n\n" and
// longer runs) are kept as they are.
func Normalize(s string) string {
	out, err := loneNewline.Replace(s, " ", -1, -1)
	if err != nil {
		// Replace only fails on a match timeout, and none is set.
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}
