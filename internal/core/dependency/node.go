package dependency

// NewNode creates the Node.js runtime dependency.
func NewNode() *BaseDependency {
	return &BaseDependency{
		name:        Node,
		displayName: "Node.js",
		downloads: map[string]Download{
			"darwin": {
				URL:      "https://nodejs.org/dist/v20.11.1/node-v20.11.1.pkg",
				FileName: "node-v20.11.1.pkg",
				Kind:     ArchivePkg,
			},
		},
		packages: map[string]string{
			"choco":   "nodejs",
			"apt-get": "nodejs",
		},
	}
}

func init() { Register(NewNode(), 0) }
