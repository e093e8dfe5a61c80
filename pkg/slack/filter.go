package slack

import "regexp"

// chainMessagePattern recognizes automated chain-epoch log lines: a
// leading sequence number, a parenthesized timestamp, and a bracket
// body carrying either a long base32-style CID starting with "bafy2"
// or an "f0<digits>" actor ID.
var chainMessagePattern = regexp.MustCompile(`(?i)^\s*\d+:\s*\([^)]*\)\s*\[[^\]]*\b(?:bafy2[a-z2-7]{45,}|f0\d+)[^\]]*\]`)

// IsChainMessage reports whether text is an automated chain-epoch log
// message. Such messages are dropped from exported result sets.
func IsChainMessage(text string) bool {
	return chainMessagePattern.MatchString(text)
}
