// Command rask is the entry point for the compiler/runtime's CLI
// surface (§6), generalized from the teacher's cmd/morfx/main.go thin
// main() (parse flags, build a Runner, hand off to internal/cli)
// except wired through the cobra command tree the teacher's own
// demo/cmd/main.go establishes the precedent for.
package main

import "github.com/rask-lang/rask-sub001/cmd/rask/cmd"

func main() {
	cmd.Execute()
}
