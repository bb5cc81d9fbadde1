// Package main is the termsense command line.
//
// Usage:
//
//	termsense analyze https://example.com/terms
//	termsense popup https://example.com/privacy
//	termsense options set-key sk-...
//
// See --help for all available options.
package main

func main() {
	Execute()
}
