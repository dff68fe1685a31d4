package main

import "github.com/vibast-solutions/ms-go-parking-payments/cmd"

func main() {
	cmd.Execute()
}
