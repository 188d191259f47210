/*
	Copyright 2025 PSU Eco Racing Team
*/

package main

import "github.com/psuracing/racingline-service-go/cmd"

func main() {
	cmd.Execute()
}
