package main

import "github.com/replikativ/konserve-lmdb/cmd"

func main() {
	cmd.Execute()
}
