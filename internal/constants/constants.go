// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort         = "8080"
	DefaultQueuePath    = "queue.json"
	DefaultCachePath    = "axiolite.db"
	DefaultDownloadsDir = "downloads"
	DefaultFormat       = "mp3"
	DefaultQuality      = "320"
	DefaultConcurrency  = 2
	DefaultPollInterval = 2 * time.Second
	DefaultYtdlpBin     = "yt-dlp"
	DefaultCacheTTL     = 12 * time.Hour
)

// Timeouts for outbound calls
const (
	ResolveTimeout   = 30 * time.Second
	FetchTimeout     = 10 * time.Minute
	ImageHTTPTimeout = 30 * time.Second
	APIHTTPTimeout   = 15 * time.Second
)

// Retry policy for outbound HTTP
const (
	DefaultRetryCount  = 3
	DefaultRetryBase   = 1 * time.Second
	MinRequestInterval = 200 * time.Millisecond
)

// Audio formats
const (
	FormatMP3  = "mp3"
	FormatFLAC = "flac"
	FormatM4A  = "m4a"
	FormatOpus = "opus"
)

// MIME Types
const (
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeMP4  = "audio/mp4"
	MimeTypeOpus = "audio/opus"
)

// Search
const (
	SearchResultLimit = 10
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"
