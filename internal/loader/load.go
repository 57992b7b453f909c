// Package loader reads schema files into declarations and builds them into a
// validated schema. The front-end is chosen by file extension.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsgen/internal/schema"
)

// Format identifies a schema front-end.
type Format string

const (
	FormatDSL  Format = "ecs"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatLua  Format = "lua"
)

// FormatOf picks the front-end for path from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ecs":
		return FormatDSL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".lua":
		return FormatLua, nil
	default:
		return "", fmt.Errorf("unsupported schema file %s (want .ecs, .yaml, .yml, .toml or .lua)", path)
	}
}

// Loader turns schema files into schemas.
type Loader struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Loader {
	return &Loader{log: log}
}

// LoadFile reads, parses and validates the schema at path. Syntax errors
// are wrapped with the file name; validation errors are returned as joined
// *schema.Error values.
func (l *Loader) LoadFile(path string) (*schema.Schema, error) {
	decls, err := l.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := schema.Build(decls)
	if err != nil {
		return nil, err
	}
	l.log.Debug("schema loaded",
		zap.String("file", path),
		zap.Int("components", len(s.Components)),
		zap.Int("events", len(s.Events)),
		zap.Int("systems", len(s.Systems)),
	)
	return s, nil
}

// ReadFile returns the raw declarations of the schema at path.
func (l *Loader) ReadFile(path string) ([]schema.Declaration, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return l.Parse(format, path, src)
}

// Parse runs the front-end for format over src. name is used in positions.
func (l *Loader) Parse(format Format, name string, src []byte) ([]schema.Declaration, error) {
	var (
		decls []schema.Declaration
		err   error
	)
	switch format {
	case FormatDSL:
		decls, err = parseDSL(name, src)
	case FormatYAML:
		decls, err = parseYAML(name, src)
	case FormatTOML:
		decls, err = parseTOML(name, src)
	case FormatLua:
		decls, err = l.parseLua(name, src)
	default:
		return nil, fmt.Errorf("unknown schema format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}
	l.log.Debug("schema parsed",
		zap.String("file", name),
		zap.String("format", string(format)),
		zap.Int("declarations", len(decls)),
	)
	return decls, nil
}
