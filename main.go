package main

import "github.com/naka-gawa/github-code-survey/cmd"

func main() {
	cmd.Execute()
}
