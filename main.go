package main

import "github.com/curaious/taskdesk/cmd"

func main() {
	cmd.Execute()
}
