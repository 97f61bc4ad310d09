package main

import "github.com/oshokin/tool-packager/cmd/tool-packager/cmd"

func main() {
	cmd.Execute()
}
