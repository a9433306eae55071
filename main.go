package main

import "wfm-planner/cli"

func main() {
	cli.Execute()
}
