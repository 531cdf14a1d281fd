//go:build !linux

package main

import "fmt"

func invokeBootloader(path string, inverted, activeHigh bool) error {
	return fmt.Errorf("boot-entry pin toggle (-bl-invoke) is only implemented on linux")
}
