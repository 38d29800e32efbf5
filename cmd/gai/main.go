// Command gai orchestrates the CL lifecycle described in internal/scheduler,
// internal/lifecycle, and internal/acceptflow: a long-running loop that
// drives hooks and agents forward, plus the thin CLI actions the loop and
// the (out-of-scope) TUI shell out to.
package main

func main() {
	Execute()
}
