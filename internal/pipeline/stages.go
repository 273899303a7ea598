package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"git.home.luguber.info/inful/assetbuilder/internal/asset"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/manifest"
	"git.home.luguber.info/inful/assetbuilder/internal/plugin"
)

// StageName is a strongly-typed identifier for a pipeline stage.
type StageName string

func (s StageName) String() string { return string(s) }

// Stages in execution order.
const (
	StageCollect  StageName = "collect"
	StageConvert  StageName = "convert"
	StageBundle   StageName = "bundle"
	StageCompress StageName = "compress"
	StageGzip     StageName = "gzip"
	StageSave     StageName = "save"
	StageMarkup   StageName = "markup"
)

// maxConvertPasses bounds the convert loop for a single asset. A converter
// whose output keeps an extension it also handles would otherwise never settle.
const maxConvertPasses = 32

// runState is what stages read and replace while a pipeline runs.
type runState struct {
	in       Input
	registry *plugin.Registry
	logger   *slog.Logger
	assets   []asset.Asset
	html     string
}

// stage is a discrete unit of work in a pipeline run.
type stage func(ctx context.Context, st *runState) error

// stageDef pairs a stage name with its executing function. Disabled stages
// stay in the plan so they can be reported as skipped.
type stageDef struct {
	name    StageName
	fn      stage
	enabled bool
}

// plan builds the ordered stage list for a set of options.
func plan(opts config.Options) []stageDef {
	return []stageDef{
		{StageCollect, collectStage, true},
		{StageConvert, convertStage, true},
		{StageBundle, bundleStage, opts.Bundle},
		{StageCompress, compressStage, opts.Compress},
		{StageGzip, gzipStage, opts.Gzip},
		{StageSave, saveStage, true},
		{StageMarkup, markupStage, true},
	}
}

func collectStage(_ context.Context, st *runState) error {
	assets, err := Collect(st.in.Source, st.in.Manifest)
	if err != nil {
		st.logger.Error("Failed to load assets from manifest", logfields.Error(err))
		return err
	}
	st.assets = assets
	return nil
}

func convertStage(_ context.Context, st *runState) error {
	out := make([]asset.Asset, 0, len(st.assets))
	for _, a := range st.assets {
		converted, err := Convert(st.registry, a, st.in.Type)
		if err != nil {
			st.logger.Error("Failed to convert asset", errorAttrs(err)...)
			return err
		}
		out = append(out, converted)
	}
	st.assets = out
	return nil
}

func bundleStage(_ context.Context, st *runState) error {
	st.assets = []asset.Asset{Bundle(st.assets, st.in.Prefix, st.in.Type)}
	return nil
}

func compressStage(_ context.Context, st *runState) error {
	assets, err := Compress(st.registry, st.assets, st.in.Type)
	if err != nil {
		st.logger.Error("Failed to compress asset", errorAttrs(err)...)
		return err
	}
	st.assets = assets
	return nil
}

func gzipStage(_ context.Context, st *runState) error {
	assets, err := Gzip(st.assets)
	if err != nil {
		st.logger.Error("Failed to gzip asset", errorAttrs(err)...)
		return err
	}
	st.assets = assets
	return nil
}

func saveStage(_ context.Context, st *runState) error {
	assets, err := Save(st.in.Source, st.in.Options, st.assets)
	if err != nil {
		st.logger.Error("Failed to save asset to disk", errorAttrs(err)...)
		return err
	}
	st.assets = assets
	return nil
}

func markupStage(_ context.Context, st *runState) error {
	st.html = Markup(st.registry, st.assets, st.in.Options.DisplayOrOutputPath())
	return nil
}

// Collect reads every manifest entry under source, in order. The first
// unreadable file aborts collection.
func Collect(source string, m manifest.Manifest) ([]asset.Asset, error) {
	assets := make([]asset.Asset, 0, len(m))
	for _, p := range m {
		full := filepath.Join(source, p)
		content, err := os.ReadFile(full)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryManifest, "failed to load asset from manifest").
				WithContext("asset", p).
				WithContext("path", full).
				Build()
		}
		assets = append(assets, asset.Asset{
			Content:  content,
			Filename: filepath.Base(p),
			Dirname:  filepath.Dir(full),
		})
	}
	return assets, nil
}

// Convert applies converters to a until none matches its current extension.
// Each conversion strips one extension; when none is left the output type is
// appended.
func Convert(reg *plugin.Registry, a asset.Asset, outputType string) (asset.Asset, error) {
	for range maxConvertPasses {
		conv, ok := reg.FindConverter(a.Ext())
		if !ok {
			return a, nil
		}
		meta := conv.Metadata()
		content, err := conv.Convert(a.Content)
		if err != nil {
			return a, errors.WrapError(plugin.NewPluginError(meta.Name, "convert", err), errors.CategoryConversion, "failed to convert asset").
				WithContext("asset", a.Filename).
				WithContext("plugin", meta.String()).
				Build()
		}
		name := a.Base()
		if filepath.Ext(name) == "" {
			name += outputType
		}
		a = a.WithContent(content).WithFilename(name)
	}
	return a, errors.ConversionError("converter chain did not settle").
		WithContext("asset", a.Filename).
		WithContext("passes", maxConvertPasses).
		Build()
}

// Bundle joins the content of every asset with newlines into one asset named
// {prefix}{outputType}.
func Bundle(assets []asset.Asset, prefix, outputType string) asset.Asset {
	parts := make([][]byte, len(assets))
	for i, a := range assets {
		parts[i] = a.Content
	}
	return asset.Asset{
		Content:  bytes.Join(parts, []byte("\n")),
		Filename: prefix + outputType,
	}
}

// Compress minifies every asset with the compressor registered for the output
// type. Without one the assets are returned unchanged.
func Compress(reg *plugin.Registry, assets []asset.Asset, outputType string) ([]asset.Asset, error) {
	comp, ok := reg.FindCompressor(outputType)
	if !ok {
		return assets, nil
	}
	out := make([]asset.Asset, 0, len(assets))
	for _, a := range assets {
		content, err := comp.Compress(a.Content)
		if err != nil {
			meta := comp.Metadata()
			return nil, errors.WrapError(plugin.NewPluginError(meta.Name, "compress", err), errors.CategoryCompression, "failed to compress asset").
				WithContext("asset", a.Filename).
				WithContext("plugin", meta.String()).
				Build()
		}
		out = append(out, a.WithContent(content))
	}
	return out, nil
}

// Gzip follows every asset with a {filename}.gz sibling holding its gzip
// encoded content.
func Gzip(assets []asset.Asset) ([]asset.Asset, error) {
	out := make([]asset.Asset, 0, 2*len(assets))
	for _, a := range assets {
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err == nil {
			_, err = zw.Write(a.Content)
		}
		if err == nil {
			err = zw.Close()
		}
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryCompression, "failed to gzip asset").
				WithContext("asset", a.Filename).
				Build()
		}
		out = append(out, a, asset.Asset{
			Content:  buf.Bytes(),
			Filename: a.Filename + ".gz",
			Dirname:  a.Dirname,
		})
	}
	return out, nil
}

// Save writes every asset to {source}/{staging_path}/{output_path} and records
// the output path on it. Assets written before a failure stay on disk.
func Save(source string, opts config.Options, assets []asset.Asset) ([]asset.Asset, error) {
	dir := StagedOutputDir(source, opts)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.CategorySave, "failed to create staging directory").
			WithContext("path", dir).
			Build()
	}

	out := make([]asset.Asset, 0, len(assets))
	for _, a := range assets {
		target := filepath.Join(dir, a.Filename)
		if err := os.WriteFile(target, a.Content, 0o644); err != nil {
			return nil, errors.WrapError(err, errors.CategorySave, "failed to save asset to disk").
				WithContext("asset", a.Filename).
				WithContext("path", target).
				Build()
		}
		out = append(out, a.WithOutputPath(opts.OutputPath))
	}
	return out, nil
}

// Markup concatenates the fragment of the template selected for each asset.
// Assets without a template contribute nothing.
func Markup(reg *plugin.Registry, assets []asset.Asset, displayPath string) string {
	var sb strings.Builder
	for _, a := range assets {
		if tmpl, ok := reg.FindTemplate(a.Ext()); ok {
			sb.WriteString(tmpl.Render(displayPath, a.Filename))
		}
	}
	return sb.String()
}

// StagedOutputDir is where Save writes assets for the given options.
func StagedOutputDir(source string, opts config.Options) string {
	return filepath.Join(source, opts.StagingPath, opts.OutputPath)
}

// errorAttrs flattens the asset and plugin context of a classified error into log attributes.
func errorAttrs(err error) []any {
	attrs := []any{logfields.Error(err)}
	ce, ok := errors.AsClassified(err)
	if !ok {
		return attrs
	}
	if name, ok := ce.Context().GetString("asset"); ok {
		attrs = append(attrs, logfields.Asset(name))
	}
	if name, ok := ce.Context().GetString("plugin"); ok {
		attrs = append(attrs, logfields.Plugin(name))
	}
	return attrs
}
