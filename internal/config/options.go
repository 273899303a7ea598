package config

import (
	"fmt"
	"path"
	"strings"
)

// Default option values for every pipeline.
const (
	DefaultStagingPath = ".asset_pipeline"
	DefaultOutputPath  = "assets"
)

// Options are the resolved settings a pipeline runs with.
type Options struct {
	StagingPath string
	OutputPath  string
	DisplayPath *string // nil means "use OutputPath in markup"
	Bundle      bool
	Compress    bool
	Gzip        bool
}

// OptionsOverlay is the user-facing, partially specified form of Options.
// Nil fields keep the value of the layer below.
type OptionsOverlay struct {
	StagingPath *string `yaml:"staging_path,omitempty"`
	OutputPath  *string `yaml:"output_path,omitempty"`
	DisplayPath *string `yaml:"display_path,omitempty"`
	Bundle      *bool   `yaml:"bundle,omitempty"`
	Compress    *bool   `yaml:"compress,omitempty"`
	Gzip        *bool   `yaml:"gzip,omitempty"`
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		StagingPath: DefaultStagingPath,
		OutputPath:  DefaultOutputPath,
		Bundle:      true,
		Compress:    true,
		Gzip:        false,
	}
}

// Merge layers an overlay over o and returns the result. o is not modified.
func (o Options) Merge(overlay OptionsOverlay) Options {
	if overlay.StagingPath != nil {
		o.StagingPath = *overlay.StagingPath
	}
	if overlay.OutputPath != nil {
		o.OutputPath = *overlay.OutputPath
	}
	if overlay.DisplayPath != nil {
		dp := *overlay.DisplayPath
		o.DisplayPath = &dp
	}
	if overlay.Bundle != nil {
		o.Bundle = *overlay.Bundle
	}
	if overlay.Compress != nil {
		o.Compress = *overlay.Compress
	}
	if overlay.Gzip != nil {
		o.Gzip = *overlay.Gzip
	}
	return o
}

// DisplayOrOutputPath returns the path used in generated markup URLs.
func (o Options) DisplayOrOutputPath() string {
	if o.DisplayPath != nil {
		return *o.DisplayPath
	}
	return o.OutputPath
}

// String renders the options in a stable textual form: keys sorted, strings quoted,
// an unset display path distinct from an empty one. Fingerprints depend on it.
func (o Options) String() string {
	display := "nil"
	if o.DisplayPath != nil {
		display = fmt.Sprintf("%q", *o.DisplayPath)
	}
	return strings.Join([]string{
		fmt.Sprintf("bundle=%t", o.Bundle),
		fmt.Sprintf("compress=%t", o.Compress),
		"display_path=" + display,
		fmt.Sprintf("gzip=%t", o.Gzip),
		fmt.Sprintf("output_path=%q", o.OutputPath),
		fmt.Sprintf("staging_path=%q", o.StagingPath),
	}, ";")
}

// Validate rejects paths that would escape the source root.
func (o Options) Validate() error {
	if strings.TrimSpace(o.StagingPath) == "" {
		return fmt.Errorf("staging_path must not be empty")
	}
	for name, p := range map[string]string{"staging_path": o.StagingPath, "output_path": o.OutputPath} {
		if path.IsAbs(p) {
			return fmt.Errorf("%s must be relative, got %q", name, p)
		}
		if cleaned := path.Clean(p); cleaned == ".." || strings.HasPrefix(cleaned, "../") {
			return fmt.Errorf("%s must not leave the source directory, got %q", name, p)
		}
	}
	return nil
}

// StringPtr returns a pointer to s; handy for building overlays in code.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b; handy for building overlays in code.
func BoolPtr(b bool) *bool { return &b }
