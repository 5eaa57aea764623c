// main.go
package main

import "storebot/internal/cmd"

func main() {
	cmd.Execute()
}
