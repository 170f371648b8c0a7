//go:build !unix

package main

func terminalSize() (int, int) {
	return 80, 24
}
