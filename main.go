package main

import "github.com/gtdvccc/sslv2-go/pkg/cli"

func main() {
	cli.Execute()
}
