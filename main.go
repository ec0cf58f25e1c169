package main

import "github.com/carvetools/vaultcarve/cmd"

func main() {
	cmd.Execute()
}
