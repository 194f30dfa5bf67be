//go:build !release

package util

// Assert panics with msg if cond is false. Release builds compile it out.
func Assert(cond bool, msg interface{}) {
	if !cond {
		panic(msg)
	}
}
