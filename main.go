package main

import "github.com/kfreiman/piigate/cmd"

func main() {
	cmd.Execute()
}
