/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/gridstore/cmd/gridstore/cmd"

func main() {
	cmd.Execute()
}
