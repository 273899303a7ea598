package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyPrefix      = "prefix"
	KeyTag         = "tag"
	KeyAsset       = "asset"
	KeyPlugin      = "plugin"
	KeyFileType    = "file_type"
	KeyPath        = "path"
	KeyFingerprint = "fingerprint"
	KeyCached      = "cached"
	KeyCount       = "count"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Prefix(p string) slog.Attr       { return slog.String(KeyPrefix, p) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func Asset(filename string) slog.Attr { return slog.String(KeyAsset, filename) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func FileType(ext string) slog.Attr   { return slog.String(KeyFileType, ext) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Fingerprint(fp string) slog.Attr { return slog.String(KeyFingerprint, fp) }
func Cached(c bool) slog.Attr         { return slog.Bool(KeyCached, c) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
