// Command undo traces a program's filesystem-mutating syscalls and lets
// the changes it made be listed and reverted afterwards.
package main

import (
	"github.com/servusdei2018/undo/cmd"
	_ "github.com/servusdei2018/undo/cmd/clear"
	_ "github.com/servusdei2018/undo/cmd/list"
	_ "github.com/servusdei2018/undo/cmd/revert"
	_ "github.com/servusdei2018/undo/cmd/run"
)

func main() {
	cmd.Execute()
}
