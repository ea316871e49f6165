package main

import "github.com/Tiliavir/tutor-hub/cmd"

func main() {
	cmd.Execute()
}
