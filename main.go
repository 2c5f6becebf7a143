// Public domain.

package main

import "github.com/soniakeys/ephtrunc/internal/etprog"

func main() {
	etprog.Main()
}
