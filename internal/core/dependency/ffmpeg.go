package dependency

// NewFFmpeg creates the media transcoder dependency.
func NewFFmpeg() *BaseDependency {
	return &BaseDependency{
		name:        FFmpeg,
		displayName: "ffmpeg",
		downloads: map[string]Download{
			"darwin": {
				URL:      "https://evermeet.cx/ffmpeg/ffmpeg-6.1.1.zip",
				FileName: "ffmpeg.zip",
				Kind:     ArchiveZip,
				Binary:   "ffmpeg",
			},
		},
	}
}

func init() { Register(NewFFmpeg(), 1) }
