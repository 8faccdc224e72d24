package main

import "habitquest/cmd/habitquest/root"

func main() {
	root.Execute()
}
