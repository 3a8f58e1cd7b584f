package testutil

import (
	"math/rand/v2"

	"github.com/kbukum/restadapter/version"
)

// RandomInt returns a pseudo-random int in [0, 1e9), handy for unique
// titles and names in live tests.
func RandomInt() int {
	return rand.IntN(1_000_000_000)
}

// UserAgent returns "<name> for restadapter v<version>".
func UserAgent(name string) string {
	return name + " for restadapter v" + version.Version
}
