package config

const (
	defaultDestDir         = "~/.local/share/speechcrawler"
	defaultLogDir          = "~/.local/share/speechcrawler/logs"
	defaultSearchPageLimit = 30
	defaultMaxChannelSize  = 100
	defaultSubtitleLang    = "en"
	defaultMinWords        = 5
	defaultMergeGapMS      = 1000
	defaultMaxMergedMS     = 10000
	defaultMinDurationMS   = 1000
	defaultMaxDurationMS   = 20000
	defaultAllowedPattern  = `^[A-Za-z0-9,.\-?"'’!“\s;:”–‘/\\]+$`
	defaultSampleRate      = 16000
	defaultSampleWidth     = 2
	defaultAlignerURL      = "http://localhost:8765"
	defaultAlignerTimeout  = 120
	defaultDownloader      = "yt-dlp"
	defaultFFmpeg          = "ffmpeg"
	defaultSocketTimeout   = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

func defaultBlacklistGlyphs() []string {
	return []string{"♪", "♬", "♫"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DestDir: defaultDestDir,
			LogDir:  defaultLogDir,
		},
		Crawl: Crawl{
			SearchPageLimit: defaultSearchPageLimit,
			MaxChannelSize:  defaultMaxChannelSize,
			SubtitleLang:    defaultSubtitleLang,
		},
		Pipeline: Pipeline{
			MinWords:        defaultMinWords,
			MergeGapMS:      defaultMergeGapMS,
			MaxMergedMS:     defaultMaxMergedMS,
			MinDurationMS:   defaultMinDurationMS,
			MaxDurationMS:   defaultMaxDurationMS,
			BlacklistGlyphs: defaultBlacklistGlyphs(),
			AllowedPattern:  defaultAllowedPattern,
		},
		Audio: Audio{
			SampleRate:  defaultSampleRate,
			SampleWidth: defaultSampleWidth,
		},
		Aligner: Aligner{
			URL:            defaultAlignerURL,
			RequestTimeout: defaultAlignerTimeout,
		},
		Tools: Tools{
			Downloader:    defaultDownloader,
			FFmpeg:        defaultFFmpeg,
			SocketTimeout: defaultSocketTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
