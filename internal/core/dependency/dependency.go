// Package dependency defines the external runtime dependencies the agent
// needs and installs the missing ones.
//
// Each dependency is a self-contained value describing how to detect it and
// where to get it on each platform. How it is installed is decided by the
// Strategy selected for the host OS, never by the dependency itself.
package dependency

import (
	"fmt"
	"sort"
	"strings"
)

// Name identifies a dependency.
type Name string

const (
	Node    Name = "node"
	FFmpeg  Name = "ffmpeg"
	FFprobe Name = "ffprobe"
	Ngrok   Name = "ngrok"
)

// ArchiveKind is the format of a direct download.
type ArchiveKind int

const (
	// ArchivePkg is a macOS installer package run with installer(8).
	ArchivePkg ArchiveKind = iota
	// ArchiveZip is a zip holding a single binary moved into the install dir.
	ArchiveZip
)

// Download describes a directly downloadable asset.
type Download struct {
	URL      string
	FileName string // Temp file name the asset is saved as
	Kind     ArchiveKind
	Binary   string // Binary inside a zip archive
}

// Dependency describes one external program the agent needs.
type Dependency interface {
	Name() Name
	DisplayName() string // "Node.js", "ffmpeg"
	Command() string     // executable whose presence means installed

	// Download returns the direct-download asset for goos, if any.
	Download(goos string) (Download, bool)

	// Package returns the package name used by manager ("choco", "apt-get").
	Package(manager string) string
}

// BaseDependency implements Dependency from plain fields.
type BaseDependency struct {
	name        Name
	displayName string
	command     string
	downloads   map[string]Download
	packages    map[string]string
}

func (b *BaseDependency) Name() Name          { return b.name }
func (b *BaseDependency) DisplayName() string { return b.displayName }

func (b *BaseDependency) Command() string {
	if b.command == "" {
		return string(b.name)
	}
	return b.command
}

func (b *BaseDependency) Download(goos string) (Download, bool) {
	d, ok := b.downloads[goos]
	return d, ok
}

func (b *BaseDependency) Package(manager string) string {
	if p, ok := b.packages[manager]; ok {
		return p
	}
	return string(b.name)
}

// --- Registry ---

var registry []*registered

type registered struct {
	dep   Dependency
	order int
}

// Register adds a dependency to the global registry. order fixes its
// position in All regardless of registration order.
func Register(d Dependency, order int) {
	registry = append(registry, &registered{dep: d, order: order})
	sort.SliceStable(registry, func(i, j int) bool { return registry[i].order < registry[j].order })
}

// All returns every registered dependency in declared order.
func All() []Dependency {
	out := make([]Dependency, len(registry))
	for i, r := range registry {
		out[i] = r.dep
	}
	return out
}

// ByName returns the dependency with the given name, if registered.
func ByName(name Name) (Dependency, bool) {
	for _, r := range registry {
		if r.dep.Name() == name {
			return r.dep, true
		}
	}
	return nil, false
}

// ByNames resolves names in the order given.
func ByNames(names []string) ([]Dependency, error) {
	result := make([]Dependency, 0, len(names))
	for _, name := range names {
		d, ok := ByName(Name(name))
		if !ok {
			var valid []string
			for _, r := range registry {
				valid = append(valid, string(r.dep.Name()))
			}
			return nil, fmt.Errorf("unknown dependency %q; available: %s",
				name, strings.Join(valid, ", "))
		}
		result = append(result, d)
	}
	return result, nil
}
