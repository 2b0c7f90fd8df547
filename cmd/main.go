package main

import (
	cmd "github.com/kerbaras/rnaexport/cmd/rnaexport"
)

func main() {
	cmd.Execute()
}
