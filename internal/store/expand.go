package store

import "strings"

func containsPercentRef(s string) bool {
	i := strings.IndexByte(s, '%')
	return i >= 0 && strings.IndexByte(s[i+1:], '%') > 0
}
