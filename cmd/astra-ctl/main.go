package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"astra/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocket, "Control socket of the running daemon")
	cli.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: astra-ctl [--socket path] stop|ping")
		cli.PrintDefaults()
	}
	cli.Parse()

	cmd := ipc.CmdStop
	if cli.NArg() > 0 {
		cmd = cli.Arg(0)
	}

	if _, err := ipc.Send(*socket, cmd); err != nil {
		fmt.Fprintln(os.Stderr, "astra-ctl:", err)
		os.Exit(1)
	}
	fmt.Println("ok")
}
