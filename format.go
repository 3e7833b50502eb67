package sidebar

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SectionSign is the protocol's color escape character.
const SectionSign = '§'

// AltColorChar is the human-friendly escape translated by [Colorize].
const AltColorChar = '&'

const colorCodes = "0123456789AaBbCcDdEeFfKkLlMmNnOoRrXx"

var stripPattern = regexp.MustCompile(`(?i)§[0-9A-FK-ORX]`)

// Colorize translates '&' color tokens into their protocol form.
//
// A '&' followed by a known code character (0-9, a-f, k-o, r, x, either case)
// becomes '§' plus the lowercased code. Any other '&' is left as is.
func Colorize(s string) string {
	if !strings.ContainsRune(s, AltColorChar) {
		return s
	}
	runes := []rune(s)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] == AltColorChar && strings.ContainsRune(colorCodes, runes[i+1]) {
			runes[i] = SectionSign
			runes[i+1] = toLowerASCII(runes[i+1])
		}
	}
	return string(runes)
}

// StripColor removes every protocol color token from s.
func StripColor(s string) string {
	return stripPattern.ReplaceAllString(s, "")
}

// displayLen is the length the display protocol enforces, counted in runes.
func displayLen(s string) int {
	return utf8.RuneCountInString(s)
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
