// Package main provides the CLI entrypoint for crouton.
package main

func main() {
	Execute()
}
