/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/pxdb/cmd/pxdb/cmd"

func main() {
	cmd.Execute()
}
