// Command pcdenoise removes noise from point clouds with bilateral
// denoising, and provides helpers to smooth, compare and convert them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/unixpickle/essentials"
)

var errArgumentNumber = errors.New("invalid number of arguments")
var errInvalidCommand = errors.New("invalid command")

var usages = map[string]string{
	"denoise":  "denoise [flags] <input> <output>",
	"smooth":   "smooth [flags] <input> <output> (output vertices are in the order written by the smoother)",
	"register": "register [flags] <source> <target>",
	"convert":  "convert [flags] <input> <output>",
}

var commands = map[string]func(args []string) error{
	"denoise":  runDenoise,
	"smooth":   runSmooth,
	"register": runRegister,
	"convert":  runConvert,
}

func usage(w io.Writer) {
	names := make([]string, 0, len(usages))
	for name := range usages {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "Usage: pcdenoise <command> [flags] <args>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range names {
		fmt.Fprintln(w, "  "+usages[name])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Point clouds are read and written as xyz text, or PCD if the file name ends with .pcd.")
}

func runCommand(args []string) error {
	if len(args) == 0 {
		return errArgumentNumber
	}
	run, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", errInvalidCommand, args[0])
	}
	if err := run(args[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
		return err
	}
	return nil
}

func main() {
	log.SetFlags(log.Ltime)
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "help" || os.Args[1] == "-help" {
		usage(os.Stderr)
		os.Exit(2)
	}
	if err := runCommand(os.Args[1:]); err != nil {
		if errors.Is(err, errInvalidCommand) {
			usage(os.Stderr)
		}
		essentials.Die(strings.TrimSpace(err.Error()))
	}
}
