// Command sspctl is a terminal front end for the cloud self-service portal.
package main

import (
	"context"
	"os"

	"github.com/MrEthical07/goPortal/internal/logs"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logs.Default().Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}
