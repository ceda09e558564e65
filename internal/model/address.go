package model

import "regexp"

// Loop addresses look like "A.001.004": one letter for the loop, then the
// panel and device numbers. A device label only acts as an address when it
// matches this pattern exactly.
var addressPattern = regexp.MustCompile(`^[A-Z]\.\d{3}\.\d{3}$`)

// IsLoopAddress reports whether label is a well-formed loop address.
func IsLoopAddress(label string) bool {
	return addressPattern.MatchString(label)
}
