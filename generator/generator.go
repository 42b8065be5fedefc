package generator

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/imports"

	"omibyte.io/picconf/config"
)

const (
	lengthConst    = "ConfigSectorLength"
	sectorType     = "ConfigSector"
	builderType    = "ConfigSectorBuilder"
	defaultFactory = "DefaultConfigSector"
	arrayMethod    = "Array"
	buildMethod    = "Build"
)

type Options struct {
	// Package is the name of the generated package. Defaults to "config".
	Package string

	// Tags is an optional build constraint expression written as a
	// //go:build line.
	Tags string

	// Source names the input in the generated header. Defaults to the
	// device name.
	Source string
}

// Plan returns the declarations of the generated file in emission order.
func Plan(sector *config.ConfigSector) ([]Decl, error) {
	if err := checkNames(sector); err != nil {
		return nil, err
	}

	refs := sector.Fields()
	decls := []Decl{{Kind: KindLength, Name: lengthConst, sector: sector}}

	for _, ref := range refs {
		if ref.Field.Semantic() {
			decls = append(decls, Decl{Kind: KindEnum, Name: ref.Field.Name, sector: sector, ref: ref})
		}
	}
	for _, ref := range refs {
		if !ref.Field.Semantic() {
			decls = append(decls, Decl{Kind: KindAlias, Name: ref.Field.Name, sector: sector, ref: ref})
		}
	}

	decls = append(decls,
		Decl{Kind: KindSector, Name: sectorType, sector: sector},
		Decl{Kind: KindDefault, Name: defaultFactory, sector: sector},
		Decl{Kind: KindArray, Name: arrayMethod, sector: sector},
		Decl{Kind: KindBuilder, Name: builderType, sector: sector},
	)

	for _, ref := range refs {
		decls = append(decls, Decl{Kind: KindSetter, Name: ref.Field.Name, sector: sector, ref: ref})
	}

	decls = append(decls, Decl{Kind: KindBuild, Name: buildMethod, sector: sector})
	return decls, nil
}

// Generate renders the Go source of a configuration sector. If formatting
// fails the unformatted source is returned along with the error.
func Generate(sector *config.ConfigSector, opts Options) ([]byte, error) {
	if len(opts.Package) == 0 {
		opts.Package = "config"
	}
	if !token.IsIdentifier(opts.Package) || opts.Package == "_" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPackage, opts.Package)
	}
	if len(opts.Source) == 0 {
		opts.Source = sector.Device
	}

	decls, err := Plan(sector)
	if err != nil {
		return nil, err
	}

	var w strings.Builder
	writePreamble(&w, opts)
	for i := range decls {
		decls[i].Render(&w)
	}

	src := []byte(w.String())
	buf, err := imports.Process("", src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return src, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return buf, nil
}

func writePreamble(w *strings.Builder, opts Options) {
	fmt.Fprintf(w, "// Code generated by picconf from %s. DO NOT EDIT.\n\n", comment(opts.Source))

	if tags := strings.TrimSpace(opts.Tags); len(tags) > 0 {
		fmt.Fprintf(w, "//go:build %s\n\n", tags)
	}

	fmt.Fprintf(w, "package %s\n\n", opts.Package)
}

// memberName is the unexported builder member of a register.
func memberName(register string) string {
	name := strings.ToLower(register)
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

// namespace tracks the identifiers declared in one Go scope.
type namespace struct {
	scope string
	names map[string]string
	errs  map[string]error
}

func newNamespace(scope string, reserved ...string) *namespace {
	ns := &namespace{
		scope: scope,
		names: map[string]string{},
		errs:  map[string]error{},
	}
	for _, name := range reserved {
		ns.names[name] = "generated " + name
	}
	return ns
}

func (ns *namespace) declare(name, owner string) {
	if _, ok := ns.errs[name]; ok {
		return
	}
	if !token.IsIdentifier(name) || name == "_" {
		ns.errs[name] = fmt.Errorf("%w: %q (%s)", ErrInvalidIdentifier, name, owner)
		return
	}
	if prev, ok := ns.names[name]; ok {
		ns.errs[name] = fmt.Errorf("%w: %s %s is declared by %s and %s", ErrDuplicateName, ns.scope, name, prev, owner)
		return
	}
	ns.names[name] = owner
}

func (ns *namespace) err() error {
	keys := maps.Keys(ns.errs)
	slices.Sort(keys)

	var err error
	for _, key := range keys {
		err = errors.Join(err, ns.errs[key])
	}
	return err
}

// checkNames verifies that every identifier the generated file declares is
// valid and unique within its scope.
func checkNames(sector *config.ConfigSector) error {
	pkg := newNamespace("package", lengthConst, sectorType, builderType, defaultFactory)
	sectorScope := newNamespace(sectorType, arrayMethod)
	builderScope := newNamespace(builderType, buildMethod)

	for _, r := range sector.Registers {
		sectorScope.declare(r.Name, "register "+r.Name)
		builderScope.declare(memberName(r.Name), "register "+r.Name)
	}

	for _, ref := range sector.Fields() {
		f := ref.Field
		owner := "field " + ref.Register.Name + "." + f.Name
		pkg.declare(f.Name, owner)
		builderScope.declare(f.Name, owner)

		for _, v := range f.Values {
			pkg.declare(enumerantName(f, v), "value "+ref.Register.Name+"."+f.Name+"."+v.Name)
		}
	}

	return errors.Join(pkg.err(), sectorScope.err(), builderScope.err())
}
