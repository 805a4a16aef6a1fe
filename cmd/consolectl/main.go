package main

import (
	"github.com/veridocs/go-kyc-console/cmd/consolectl/cmd"
)

func main() {
	cmd.Execute()
}
