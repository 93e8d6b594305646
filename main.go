package main

import (
	"context"
	"fmt"
	"os"

	// Reset phrases name IANA zones; embed the database for hosts without one
	_ "time/tzdata"

	"github.com/ca-srg/tokenmon/infrastructure/di"
)

func main() {
	controller := di.NewCLIController()
	if err := controller.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
