package server

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/fbonnet/fiscal-forecast/pkg/constants"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string
	MaxUploadSize   string
	uploadSizeBytes int64
}

// NewConfig builds a server configuration from the listen address and a
// human-friendly upload size, falling back to defaults for empty values.
func NewConfig(address, maxUploadSize string) (*Config, error) {
	cfg := &Config{
		Address:         address,
		MaxUploadSize:   maxUploadSize,
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
	}
	if cfg.Address == "" {
		cfg.Address = constants.DefaultServerAddress
	}
	if strings.TrimSpace(cfg.MaxUploadSize) != "" {
		bytes, err := ParseSize(cfg.MaxUploadSize)
		if err != nil {
			return nil, err
		}
		if bytes > 0 {
			cfg.uploadSizeBytes = bytes
		}
	}
	return cfg, nil
}

// UploadSizeBytes returns the configured upload size in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
