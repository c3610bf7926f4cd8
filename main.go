package main

import "github.com/rufusmd/ai-medical-note-writer-sub003/cmd"

func main() {
	cmd.Execute()
}
