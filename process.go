package crunch

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Processor options
type Processor struct {
	Size        int
	Padding     int
	Xml         bool
	Binary      bool
	Json        bool
	Premultiply bool
	Trim        bool
	Verbose     bool
	Force       bool
	Unique      bool
	Rotate      bool
}

// Source identifies one input image on disk together with the relative name
// it carries into the atlas.
type Source struct {
	Path string
	Name string
}

// Process is the main entry point of the packing pipeline. It fingerprints
// the run, loads every input bitmap (trimming it when Trim is set), packs them onto as many pages
// as needed and writes the page PNGs plus the requested manifests next to the
// output prefix. The args slice holds the raw CLI tokens after the program
// name; they are folded into the fingerprint so any option change forces a
// repack.
//
// When the fingerprint matches the previous run and Force is not set, the
// whole run is a successful no-op.
func (p *Processor) Process(output string, inputs []string, args []string) error {
	outputName := strings.TrimSuffix(output, filepath.Ext(output))
	pagePrefix := filepath.ToSlash(outputName)

	hash, err := Fingerprint(args, inputs)
	if err != nil {
		return err
	}

	if old, ok := LoadHash(outputName + ".hash"); ok && !p.Force && old == hash {
		fmt.Printf("atlas is unchanged: %s\n", outputName)
		return nil
	}

	p.logOptions()
	p.clean(outputName)

	sources, err := collectSources(inputs)
	if err != nil {
		return err
	}

	p.logf("loading images...")
	bitmaps := make([]*Bitmap, 0, len(sources))
	for _, src := range sources {
		p.logf("\t%s", src.Path)
		b, err := LoadBitmap(src.Path, src.Name, p.Premultiply, p.Trim)
		if err != nil {
			return err
		}
		bitmaps = append(bitmaps, b)
	}

	sort.SliceStable(bitmaps, func(i, j int) bool {
		return bitmaps[i].Area() < bitmaps[j].Area()
	})

	var packers []*Packer
	for len(bitmaps) > 0 {
		p.logf("packing %d images...", len(bitmaps))
		packer := NewPacker(p.Size, p.Size, p.Padding)
		unfit := packer.Pack(bitmaps, p.Unique, p.Rotate)
		if len(packer.Placements) == 0 {
			return &PackError{Name: bitmaps[len(bitmaps)-1].Name}
		}
		packers = append(packers, packer)
		p.logf("finished packing: %s%d (%d x %d)", outputName, len(packers)-1, packer.Width, packer.Height)
		bitmaps = unfit
	}

	for i, packer := range packers {
		path := outputName + strconv.Itoa(i) + ".png"
		p.logf("writing png: %s", path)
		if err := savePng(packer.Image(), path); err != nil {
			return err
		}
	}

	atlas := NewAtlas(pagePrefix, packers, p.Trim, p.Rotate)
	if p.Binary {
		p.logf("writing bin: %s.bin", outputName)
		if err := writeManifest(outputName+".bin", atlas.WriteBin); err != nil {
			return err
		}
	}
	if p.Xml {
		p.logf("writing xml: %s.xml", outputName)
		if err := writeManifest(outputName+".xml", atlas.WriteXml); err != nil {
			return err
		}
	}
	if p.Json {
		p.logf("writing json: %s.json", outputName)
		if err := writeManifest(outputName+".json", atlas.WriteJson); err != nil {
			return err
		}
	}

	return SaveHash(hash, outputName+".hash")
}

// Fingerprint summarizes the CLI tokens and the byte contents of every input
// PNG into a single 64-bit value.
func Fingerprint(args, inputs []string) (uint64, error) {
	var h uint64
	for _, arg := range args {
		h = HashString(h, arg)
	}
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to read input: %s", input)
		}
		if info.IsDir() {
			if h, err = HashFiles(h, input); err != nil {
				return 0, err
			}
		} else if strings.EqualFold(filepath.Ext(input), ".png") {
			if h, err = HashFile(h, input); err != nil {
				return 0, err
			}
		}
	}
	return h, nil
}

// clean removes the outputs of any previous run so a failed repack never
// leaves a stale mix behind.
func (p *Processor) clean(outputName string) {
	os.Remove(outputName + ".hash")
	os.Remove(outputName + ".bin")
	os.Remove(outputName + ".xml")
	os.Remove(outputName + ".json")
	for i := 0; i < 16; i++ {
		os.Remove(outputName + strconv.Itoa(i) + ".png")
	}
}

// collectSources expands the input list into (path, name) pairs. Directory
// inputs are walked recursively, single .png files are taken as-is with their
// file stem as name.
func collectSources(inputs []string) ([]Source, error) {
	var sources []Source
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read input: %s", input)
		}
		if info.IsDir() {
			files, err := findPngFiles(input)
			if err != nil {
				return nil, err
			}
			for _, file := range files {
				rel, err := filepath.Rel(input, file)
				if err != nil {
					return nil, errors.Wrapf(err, "failed to resolve input path: %s", file)
				}
				name := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
				sources = append(sources, Source{Path: file, Name: name})
			}
		} else if strings.EqualFold(filepath.Ext(input), ".png") {
			base := filepath.Base(input)
			sources = append(sources, Source{
				Path: input,
				Name: strings.TrimSuffix(base, filepath.Ext(base)),
			})
		}
	}
	return sources, nil
}

// findPngFiles returns every .png file below root, sorted lexicographically
// by full path so runs are reproducible across hosts.
func findPngFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() && strings.EqualFold(filepath.Ext(path), ".png") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk directory: %s", root)
	}
	sort.Strings(files)
	return files, nil
}

func savePng(img *image.NRGBA, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create file: %s", path)
	}
	defer file.Close()

	if err := imaging.Encode(file, img, imaging.PNG); err != nil {
		return errors.Wrapf(err, "could not encode the png file: %s", path)
	}
	return nil
}

func writeManifest(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create file: %s", path)
	}
	defer file.Close()

	return write(file)
}

// logf prints a progress line on stdout when verbose mode is on.
func (p *Processor) logf(format string, args ...interface{}) {
	if p.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}

func (p *Processor) logOptions() {
	if !p.Verbose {
		return
	}
	p.logf("options...")
	p.logf("\t--xml: %t", p.Xml)
	p.logf("\t--binary: %t", p.Binary)
	p.logf("\t--json: %t", p.Json)
	p.logf("\t--premultiply: %t", p.Premultiply)
	p.logf("\t--trim: %t", p.Trim)
	p.logf("\t--verbose: %t", p.Verbose)
	p.logf("\t--force: %t", p.Force)
	p.logf("\t--unique: %t", p.Unique)
	p.logf("\t--rotate: %t", p.Rotate)
	p.logf("\t--size: %d", p.Size)
	p.logf("\t--pad: %d", p.Padding)
}
