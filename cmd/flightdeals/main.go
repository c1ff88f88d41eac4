package main

import "github.com/example/flight-deals/cmd"

func main() {
	cmd.Execute()
}
