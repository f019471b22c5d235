package main

import "github.com/naka-gawa/github-review-stats/cmd"

func main() {
	cmd.Execute()
}
