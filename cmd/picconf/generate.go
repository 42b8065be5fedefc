package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"omibyte.io/picconf/config"
	"omibyte.io/picconf/edc"
	"omibyte.io/picconf/generator"
	"omibyte.io/picconf/quirks"
	"omibyte.io/picconf/targets"
)

type options struct {
	input    string
	output   string
	pkg      string
	quirks   string
	noQuirks bool
	mode     string
	tags     string
	verbose  bool
}

func generate(opts options, stdout io.Writer, logger *log.Logger) error {
	pic, err := edc.LoadFile(opts.input)
	if err != nil {
		return err
	}
	logger.Printf("loaded %s (%s)", opts.input, pic.Name)

	if !opts.noQuirks {
		table, err := quirkTable(opts.quirks)
		if err != nil {
			return err
		}
		for _, name := range table.Apply(pic) {
			logger.Printf("applied quirk %s", name)
		}
	}

	sector, err := config.Build(pic, config.Options{
		Mode:   opts.mode,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", opts.input, err)
	}
	logger.Print(sector)

	tags := opts.tags
	if tags == "auto" {
		target, err := targets.All().FindByChip(pic.Name)
		if err != nil {
			return fmt.Errorf("%s: %w", opts.input, err)
		}
		tags = target.BuildConstraint(pic.Name)
		logger.Printf("%s is a %s device", pic.Name, target.Series)
	}

	src, err := generator.Generate(sector, generator.Options{
		Package: opts.pkg,
		Tags:    tags,
		Source:  filepath.Base(opts.input),
	})
	if err != nil {
		return err
	}

	if len(opts.output) == 0 {
		_, err = stdout.Write(src)
		return err
	}

	if err = writeFile(opts.output, src); err != nil {
		return err
	}
	logger.Printf("wrote %s", opts.output)
	return nil
}

// quirkTable returns the built-in quirks, overridden by the table at path
// if one is given.
func quirkTable(path string) (quirks.Table, error) {
	table, err := quirks.Builtin()
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return table, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	extra, err := quirks.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table.Merge(extra), nil
}

// writeFile replaces the file at path so that it never holds partial output.
func writeFile(path string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err = f.Write(b); err != nil {
		f.Close()
		return err
	}
	if err = f.Chmod(0644); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
