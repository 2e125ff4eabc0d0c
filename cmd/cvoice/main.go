// Command cvoice drives the CommunityVoice engine from the terminal.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/communityvoice/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	var exitErr *cli.ExitError
	// ExitErrors have been reported by the command already.
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
