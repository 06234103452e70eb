package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/touchbasehq/touchbase-backend/internal/app"
)

func main() {
	// Best effort: containers and CI inject real env.
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}

	err = a.Run()
	a.Close()
	if err != nil {
		fmt.Printf("server exited: %v\n", err)
		os.Exit(1)
	}
}
