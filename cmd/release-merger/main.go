package main

import "github.com/oshokin/release-merger/cmd/release-merger/cmd"

func main() {
	cmd.Execute()
}
