package main

import (
	"os"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
