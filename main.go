package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/panicwrap"

	"github.com/jgulick48/mopeka-gateway/cmd"
)

func main() {
	exitStatus, err := panicwrap.BasicWrap(panicHandler)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to start panic handler: %v\n", err)
		os.Exit(1)
	}
	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// panicHandler runs in the parent process with the child's panic output.
func panicHandler(output string) {
	fmt.Fprintf(os.Stderr, "mopeka-gateway crashed:\n\n%s\n", output)
	os.Exit(1)
}
