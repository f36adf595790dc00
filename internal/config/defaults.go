package config

import "time"

const (
	defaultConfigPath        = "~/.config/preprocessor/config.toml"
	defaultSourceDir         = "./raw_images"
	defaultAPIURL            = "https://my-json-server.typicode.com/Barchid/preprocessor_assignement/images"
	defaultAPIMode           = APIModeBulk
	defaultAPITimeoutSeconds = 10
	defaultAPIMaxRetries     = 3
	defaultImageWidth        = 512
	defaultImageHeight       = 512
	defaultResampler         = "catmullrom"
	defaultMinFreeMiB        = 256
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Label API lookup modes.
const (
	// APIModeBulk fetches every label with a single request to the API root.
	APIModeBulk = "bulk"
	// APIModePerImage requests each image's label from {url}/{id}.
	APIModePerImage = "per_image"
)

var defaultExtensions = []string{".png"}

var knownResamplers = map[string]struct{}{
	"nearest":        {},
	"approxbilinear": {},
	"bilinear":       {},
	"catmullrom":     {},
	"lanczos":        {},
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			StateDir:  defaultStateDir(),
		},
		API: API{
			URL:            defaultAPIURL,
			Mode:           defaultAPIMode,
			TimeoutSeconds: defaultAPITimeoutSeconds,
			MaxRetries:     defaultAPIMaxRetries,
		},
		Image: Image{
			Width:      defaultImageWidth,
			Height:     defaultImageHeight,
			Grayscale:  true,
			Resampler:  defaultResampler,
			Extensions: append([]string(nil), defaultExtensions...),
		},
		Preflight: Preflight{
			MinFreeMiB: defaultMinFreeMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// APITimeout returns the per-request timeout for the label API.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}
