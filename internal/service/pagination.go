package service

import (
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ParsePositiveInt returns raw as an int when it is a positive integer and
// def otherwise. Empty, non-numeric, zero and negative input all yield def.
func ParsePositiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
