package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for route file loading and saving.
var (
	ErrFileNotFound      = errors.New("route file not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnsupportedFormat = errors.New("unsupported route file format")
	ErrInvalidJSON       = errors.New("invalid JSON syntax")
	ErrInvalidYAML       = errors.New("invalid YAML syntax")
	ErrValidation        = errors.New("route file validation failed")
)

// Load reads a route File from a YAML or JSON file. The format is detected
// from the extension: .yaml and .yml parse as YAML, .json as JSON, and
// anything else fails with ErrUnsupportedFormat.
func Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseJSON parses JSON bytes into a validated File.
func ParseJSON(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &f, nil
}

// ParseYAML parses YAML bytes into a validated File.
func ParseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &f, nil
}

// ToJSON marshals a File to formatted JSON bytes.
func ToJSON(f *File) ([]byte, error) {
	if f == nil {
		return nil, errors.New("file cannot be nil")
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ToYAML marshals a File to YAML bytes.
func ToYAML(f *File) ([]byte, error) {
	if f == nil {
		return nil, errors.New("file cannot be nil")
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	return data, nil
}

// Save writes a File using an atomic write-then-rename. The format follows
// the extension the same way Load detects it, and parent directories are
// created when missing.
func Save(path string, f *File) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = ToYAML(f)
	case ".json":
		data, err = ToJSON(f)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
