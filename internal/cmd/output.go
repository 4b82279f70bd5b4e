package cmd

import (
	"os"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

func printSuccess(format string, a ...interface{}) {
	successColor.Printf("✓ "+format+"\n", a...)
}

func printError(format string, a ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}

func printInfo(format string, a ...interface{}) {
	infoColor.Printf(format+"\n", a...)
}
