package main

import "github.com/frahmantamala/attendance-engine/cmd"

func main() {
	cmd.Execute()
}
