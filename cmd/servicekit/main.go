// Package main is the entry point for the servicekit binary.
package main

import (
	"os"
)

func main() {
	os.Exit(execute())
}
