package main

import "github.com/lingopeer/lingopeer/cmd"

func main() {
	cmd.Execute()
}
