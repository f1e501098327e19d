package main

import "github.com/forPelevin/clipmaker/internal/cli"

func main() { cli.Main() }
