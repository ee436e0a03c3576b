package main

import (
	"log"
	"os"

	"github.com/TFMV/seek/cmd"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("seek: ")

	if err := cmd.Execute(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}
