package main

import "github.com/MeKo-Tech/qrloc/cmd/qrloc/cmd"

func main() {
	cmd.Execute()
}
