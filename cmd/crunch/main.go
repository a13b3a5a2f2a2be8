package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/esimov/crunch"
	"github.com/esimov/crunch/utils"
	"golang.org/x/term"
)

const helpBanner = `
┌─┐┬─┐┬ ┬┌┐┌┌─┐┬ ┬
│  ├┬┘│ │││││  ├─┤
└─┘┴└─└─┘┘└┘└─┘┴ ┴

Command line texture atlas packer.
    Version: %s

usage:
    crunch [OUTPUT] [INPUT1,INPUT2,INPUT3...] [OPTIONS...]

example:
    crunch bin/atlases/atlas assets/characters,assets/tiles -p -t -v -u -r

options:
    -d  --default           use default settings (-x -p -t -u)
    -x  --xml               saves the atlas data as a .xml file
    -b  --binary            saves the atlas data as a .bin file
    -j  --json              saves the atlas data as a .json file
    -p  --premultiply       premultiplies the pixels of the bitmaps by their alpha channel
    -t  --trim              trims excess transparency off the bitmaps
    -v  --verbose           print to the debug console as the packer works
    -f  --force             ignore the hash, forcing the packer to repack
    -u  --unique            remove duplicate bitmaps from the atlas
    -r  --rotate            enables rotating bitmaps 90 degrees clockwise when packing
    -s# --size#             max atlas size (# can be 4096, 2048, 1024, 512, 256, 128, or 64)
    -p# --pad#              padding between images (# can be from 0 to 16)

`

// Version indicates the current build version.
var Version string

// pageSizes holds the valid values of the --size option.
var pageSizes = []int{4096, 2048, 1024, 512, 256, 128, 64}

func main() {
	log.SetFlags(0)

	args := os.Args[1:]
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		log.Fatal(utils.DecorateText(`invalid input, expected: "crunch [OUTPUT] [INPUTS] [OPTIONS...]"`, utils.ErrorMessage))
	}

	output := args[0]
	inputs := strings.Split(args[1], ",")

	proc := &crunch.Processor{
		Size:    4096,
		Padding: 1,
	}
	for _, arg := range args[2:] {
		if err := applyOption(proc, arg); err != nil {
			log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
	}

	var spinner *utils.Spinner
	if !proc.Verbose && term.IsTerminal(int(os.Stderr.Fd())) {
		spinnerText := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ CRUNCH", utils.StatusMessage),
			utils.DecorateText("is packing the atlas...", utils.DefaultMessage))
		spinner = utils.NewSpinner(spinnerText, time.Millisecond*200)
		spinner.Start()
	}

	now := time.Now()
	err := proc.Process(output, inputs, args)

	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", utils.DecorateText(err.Error(), utils.ErrorMessage))
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// applyOption folds one option token into the processor configuration.
// A bare -p premultiplies; -p followed by a numeric suffix sets the padding.
func applyOption(p *crunch.Processor, arg string) error {
	switch arg {
	case "-d", "--default":
		p.Xml, p.Premultiply, p.Trim, p.Unique = true, true, true, true
	case "-x", "--xml":
		p.Xml = true
	case "-b", "--binary":
		p.Binary = true
	case "-j", "--json":
		p.Json = true
	case "-p", "--premultiply":
		p.Premultiply = true
	case "-t", "--trim":
		p.Trim = true
	case "-v", "--verbose":
		p.Verbose = true
	case "-f", "--force":
		p.Force = true
	case "-u", "--unique":
		p.Unique = true
	case "-r", "--rotate":
		p.Rotate = true
	default:
		switch {
		case strings.HasPrefix(arg, "--size"):
			return parseSize(p, strings.TrimPrefix(arg, "--size"))
		case strings.HasPrefix(arg, "-s"):
			return parseSize(p, strings.TrimPrefix(arg, "-s"))
		case strings.HasPrefix(arg, "--pad"):
			return parsePadding(p, strings.TrimPrefix(arg, "--pad"))
		case strings.HasPrefix(arg, "-p"):
			return parsePadding(p, strings.TrimPrefix(arg, "-p"))
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}
	return nil
}

func parseSize(p *crunch.Processor, raw string) error {
	size, err := strconv.Atoi(raw)
	if err == nil {
		for _, s := range pageSizes {
			if s == size {
				p.Size = size
				return nil
			}
		}
	}
	return fmt.Errorf("invalid size: %s", raw)
}

func parsePadding(p *crunch.Processor, raw string) error {
	pad, err := strconv.Atoi(raw)
	if err != nil || pad < 0 || pad > 16 {
		return fmt.Errorf("invalid padding value: %s", raw)
	}
	p.Padding = pad
	return nil
}
