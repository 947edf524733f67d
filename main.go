package main

import "github.com/ryotarai/fwctl/pkg/cli"

func main() {
	cli.Execute()
}
