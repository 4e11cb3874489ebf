package main

import (
	"os"

	"github.com/playops/playops-admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
