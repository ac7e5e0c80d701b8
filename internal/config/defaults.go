package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/songsearch/data/songs.db"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.SuggestionLimit == 0 {
		cfg.Search.SuggestionLimit = 10
	}
	if cfg.Search.SuggestionMaxLimit == 0 {
		cfg.Search.SuggestionMaxLimit = 50
	}
	if cfg.Search.CacheTTLSeconds == 0 {
		cfg.Search.CacheTTLSeconds = 60
	}
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = 1024
	}
	if cfg.Library.Extensions == nil {
		cfg.Library.Extensions = []string{".cho", ".chopro", ".chordpro", ".pro"}
	}
	if cfg.Library.OwnerID == "" {
		cfg.Library.OwnerID = "library"
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Library.Directories) > 0 && cfg.Library.Recursive == nil {
		t := true
		cfg.Library.Recursive = &t
	}
}
