// main is the entry point for the idescope CLI.
package main

import (
	"github.com/huangsam/idescope/cmd"
	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	if err := cmd.Execute(); err != nil {
		iocache.CloseStores()
		contract.LogFatal("Command failed", err)
	}
}
