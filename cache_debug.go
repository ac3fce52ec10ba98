//go:build stmtcache_debug

package stmtcache

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
