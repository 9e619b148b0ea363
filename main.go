package main

import "github.com/KaramelBytes/bikeshare-cli/cmd"

func main() {
	cmd.Execute()
}
