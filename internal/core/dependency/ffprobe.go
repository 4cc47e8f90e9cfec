package dependency

// NewFFprobe creates the media prober dependency. Package managers ship
// ffprobe inside the ffmpeg package.
func NewFFprobe() *BaseDependency {
	return &BaseDependency{
		name:        FFprobe,
		displayName: "ffprobe",
		downloads: map[string]Download{
			"darwin": {
				URL:      "https://evermeet.cx/ffmpeg/ffprobe-6.1.1.zip",
				FileName: "ffprobe.zip",
				Kind:     ArchiveZip,
				Binary:   "ffprobe",
			},
		},
		packages: map[string]string{
			"choco":   "ffmpeg",
			"apt-get": "ffmpeg",
		},
	}
}

func init() { Register(NewFFprobe(), 2) }
