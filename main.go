// main.go
package main

import (
	"log"

	"eventhub/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
