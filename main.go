package main

import "device-manager/cmd"

func main() {
	cmd.Execute()
}
