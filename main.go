package main

import (
	_ "embed"

	"github.com/rubaiyatxeren/note-master-service/cmd"
)

//go:embed config/config.yaml
var c string

func main() {
	cmd.Execute(c)
}
