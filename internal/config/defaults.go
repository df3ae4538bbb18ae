package config

// Default returns a Config populated with defaults; loading overlays the file
// contents on top of it.
func Default() *Config {
	return &Config{
		Cutlist: Cutlist{
			BaseURL:      "http://cutlist.at",
			SubmitRating: 5,
		},
		Cutter: Cutter{
			Backend:   "mkvmerge",
			FrameRate: 25,
		},
		Workers: Workers{
			Cut: 2,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}
