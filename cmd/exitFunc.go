package cmd

import "os"

// exitFunc is os.Exit outside of tests.
var exitFunc = os.Exit
