package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	require.Equal(t, ".asset_pipeline", o.StagingPath)
	require.Equal(t, "assets", o.OutputPath)
	require.Nil(t, o.DisplayPath)
	require.True(t, o.Bundle)
	require.True(t, o.Compress)
	require.False(t, o.Gzip)
}

func TestOptionsMerge(t *testing.T) {
	base := DefaultOptions()
	merged := base.Merge(OptionsOverlay{
		OutputPath:  StringPtr("static/js"),
		DisplayPath: StringPtr("/cdn/js"),
		Compress:    BoolPtr(false),
		Gzip:        BoolPtr(true),
	})

	require.Equal(t, "static/js", merged.OutputPath)
	require.Equal(t, ".asset_pipeline", merged.StagingPath)
	require.NotNil(t, merged.DisplayPath)
	require.Equal(t, "/cdn/js", *merged.DisplayPath)
	require.True(t, merged.Bundle)
	require.False(t, merged.Compress)
	require.True(t, merged.Gzip)

	// base untouched
	require.Equal(t, "assets", base.OutputPath)
	require.Nil(t, base.DisplayPath)
}

func TestOptionsMergeEmptyOverlay(t *testing.T) {
	require.Equal(t, DefaultOptions(), DefaultOptions().Merge(OptionsOverlay{}))
}

func TestDisplayOrOutputPath(t *testing.T) {
	o := DefaultOptions()
	require.Equal(t, "assets", o.DisplayOrOutputPath())

	o = o.Merge(OptionsOverlay{DisplayPath: StringPtr("")})
	require.Empty(t, o.DisplayOrOutputPath())
}

func TestOptionsString(t *testing.T) {
	o := DefaultOptions()
	require.Equal(t,
		`bundle=true;compress=true;display_path=nil;gzip=false;output_path="assets";staging_path=".asset_pipeline"`,
		o.String())

	// An explicitly empty display path must not collide with an unset one.
	empty := o.Merge(OptionsOverlay{DisplayPath: StringPtr("")})
	require.NotEqual(t, o.String(), empty.String())
	require.Contains(t, empty.String(), `display_path=""`)

	require.NotEqual(t, o.String(), o.Merge(OptionsOverlay{Gzip: BoolPtr(true)}).String())
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		overlay OptionsOverlay
		wantErr bool
	}{
		{"defaults", OptionsOverlay{}, false},
		{"nested output", OptionsOverlay{OutputPath: StringPtr("static/assets")}, false},
		{"empty output", OptionsOverlay{OutputPath: StringPtr("")}, false},
		{"empty staging", OptionsOverlay{StagingPath: StringPtr(" ")}, true},
		{"absolute staging", OptionsOverlay{StagingPath: StringPtr("/tmp/stage")}, true},
		{"absolute output", OptionsOverlay{OutputPath: StringPtr("/assets")}, true},
		{"escaping output", OptionsOverlay{OutputPath: StringPtr("../assets")}, true},
		{"escaping staging", OptionsOverlay{StagingPath: StringPtr("a/../../b")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DefaultOptions().Merge(tt.overlay).Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
