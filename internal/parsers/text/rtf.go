package text

import (
	"regexp"
	"strings"
)

var (
	reRTFPar     = regexp.MustCompile(`\\par\b ?`)
	reRTFHex     = regexp.MustCompile(`\\'[0-9a-fA-F]{2}`)
	reRTFControl = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
)

// stripRTF reduces RTF to its plain text: paragraph marks become
// newlines, control words, hex escapes and group braces are dropped.
func stripRTF(content []byte) string {
	s := string(content)
	s = reRTFPar.ReplaceAllString(s, "\n")
	s = reRTFHex.ReplaceAllString(s, "")
	s = reRTFControl.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "", `\`, "").Replace(s)
	return strings.TrimSpace(s)
}
