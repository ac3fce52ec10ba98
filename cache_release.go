//go:build !stmtcache_debug

package stmtcache

const debugging = false

func assert(bool, string) {}
