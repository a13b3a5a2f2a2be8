/*
Package crunch is a command line texture atlas packer, which composites a set of
source PNG images onto one or more fixed-size atlas pages and emits a manifest
describing where each image lives inside each page.

The package provides a command line interface:

	$ crunch bin/atlases/atlas assets/characters,assets/tiles -p -t -v -u -r

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"os"

		"github.com/esimov/crunch"
	)

	func main() {
		p := &crunch.Processor{
			// Initialize struct variables
		}

		if err := p.Process("bin/atlases/atlas", []string{"assets/tiles"}, os.Args[1:]); err != nil {
			fmt.Printf("Error packing the atlas: %s", err.Error())
		}
	}
*/
package crunch
