package semconfig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidChunkSize  = errors.New("invalid chunk size")
	ErrInvalidOverlap    = errors.New("invalid overlap")
	ErrInvalidMaxContent = errors.New("invalid max content items")
	ErrInvalidLogLevel   = errors.New("invalid log level")
)

// Validate checks that cfg is internally consistent.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.MaxContentItems < 0 {
		errs = append(errs, fmt.Errorf("%w: must not be negative, got %d", ErrInvalidMaxContent, cfg.MaxContentItems))
	}

	if cfg.Chunking.DocChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: doc_chunk_size must be positive, got %d", ErrInvalidChunkSize, cfg.Chunking.DocChunkSize))
	}
	if cfg.Chunking.CodeChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: code_chunk_size must be positive, got %d", ErrInvalidChunkSize, cfg.Chunking.CodeChunkSize))
	}
	if cfg.Chunking.Overlap < 0 {
		errs = append(errs, fmt.Errorf("%w: overlap cannot be negative, got %d", ErrInvalidOverlap, cfg.Chunking.Overlap))
	}
	if cfg.Chunking.DocChunkSize > 0 && cfg.Chunking.Overlap >= cfg.Chunking.DocChunkSize {
		errs = append(errs, fmt.Errorf("%w: overlap (%d) should be less than doc_chunk_size (%d)", ErrInvalidOverlap, cfg.Chunking.Overlap, cfg.Chunking.DocChunkSize))
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidLogLevel, cfg.Logging.Level))
	}

	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
