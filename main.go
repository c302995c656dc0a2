package main

import "github.com/KaramelBytes/sheetql-cli/cmd"

func main() {
	cmd.Execute()
}
