package sidebar

import "fmt"

// entryColors are the plain color codes used to build entry tokens, in
// declaration order. Format codes and reset are excluded.
const entryColors = "0123456789abcdef"

// MaxEntries is the number of distinct entry tokens, and therefore the
// maximum number of lines a board can show.
const MaxEntries = len(entryColors) * (len(entryColors) - 1)

var entryTokens = buildEntryTokens()

func buildEntryTokens() []string {
	tokens := make([]string, 0, MaxEntries)
	for _, first := range entryColors {
		for _, second := range entryColors {
			if first == second {
				continue
			}
			tokens = append(tokens, string(SectionSign)+string(first)+" "+string(SectionSign)+string(second))
		}
	}
	return tokens
}

// Entries returns n distinct, invisible entry tokens.
//
// The sequence is deterministic: Entries(n) is always a prefix of
// Entries(n+1). Each token contains a space, so it can never collide with a
// viewer name. Returns [ErrTooManyLines] if n exceeds [MaxEntries].
func Entries(n int) ([]string, error) {
	if n > MaxEntries {
		return nil, fmt.Errorf("%w: %d lines, max %d", ErrTooManyLines, n, MaxEntries)
	}
	if n <= 0 {
		return []string{}, nil
	}
	out := make([]string, n)
	copy(out, entryTokens[:n])
	return out, nil
}
