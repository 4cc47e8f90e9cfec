package core

import (
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
)

const (
	manifestFileName   = "package.json"
	entryPointRelPath  = "src/index.js"
	dependenciesDir    = "node_modules"
	prodScriptJSONPath = "scripts.prod"
)

// Folder validation messages shown to the user.
const (
	MsgInvalidAgentFolder = "Selected folder is not a valid agent folder!"
	MsgMissingPairingFile = "Selected folder does not contain pairing-code.txt!"
)

// ValidateAgentFolder inspects dir for the markers of an agent working
// directory. It never fails; missing or unreadable markers are reported as
// absent.
func ValidateAgentFolder(dir string) FolderCheck {
	check := FolderCheck{Path: dir}
	if dir == "" {
		return check
	}

	manifestPath := filepath.Join(dir, manifestFileName)
	check.HasManifest = FileExists(manifestPath)
	check.HasEntryPoint = FileExists(filepath.Join(dir, filepath.FromSlash(entryPointRelPath)))
	check.HasPairingFile = FileExists(PairingCodePath(dir))
	check.HasDependencies = dirExists(filepath.Join(dir, dependenciesDir))

	if check.HasManifest {
		m, err := ReadManifest(dir)
		if err != nil {
			check.ManifestError = err.Error()
		} else {
			check.Name = m.Name
			check.Version = m.Version
			check.HasProdScript = m.ProdScript != ""
		}
	}
	return check
}

// Valid reports whether the manifest and the entry point are both present.
func (c FolderCheck) Valid() bool {
	return c.HasManifest && c.HasEntryPoint
}

// Problem returns the message describing why the folder cannot be used, or
// "" if it can.
func (c FolderCheck) Problem() string {
	switch {
	case !c.Valid():
		return MsgInvalidAgentFolder
	case !c.HasPairingFile:
		return MsgMissingPairingFile
	}
	return ""
}

// Warnings lists non-blocking observations about the folder.
func (c FolderCheck) Warnings() []string {
	var w []string
	if c.ManifestError != "" {
		w = append(w, "package.json could not be parsed: "+c.ManifestError)
	} else if c.HasManifest && !c.HasProdScript {
		w = append(w, `package.json has no "prod" script`)
	}
	if c.Valid() && !c.HasDependencies {
		w = append(w, "node_modules is missing; npm install will run on first start")
	}
	return w
}

// Manifest holds the package.json fields the launcher reads.
type Manifest struct {
	Name       string
	Version    string
	ProdScript string
}

// ReadManifest parses the agent's package.json. Comments and trailing
// commas are tolerated.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		return nil, err
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}

	return &Manifest{
		Name:       gjson.GetBytes(std, "name").String(),
		Version:    gjson.GetBytes(std, "version").String(),
		ProdScript: gjson.GetBytes(std, prodScriptJSONPath).String(),
	}, nil
}
