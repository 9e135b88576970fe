package soql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"
)

// SinkType represents the type of export destination.
type SinkType string

const (
	// SinkTypeFile writes results to a file on disk.
	SinkTypeFile SinkType = "file"

	// SinkTypeStdout writes results to standard output.
	SinkTypeStdout SinkType = "stdout"

	// SinkTypeNATS publishes each record to a NATS subject.
	SinkTypeNATS SinkType = "nats"

	// SinkTypeNone discards results.
	SinkTypeNone SinkType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS sink")
	ErrFileConfigRequired  = errors.New("file configuration required for file sink")
	ErrUnsupportedSinkType = errors.New("unsupported sink type")
)

// Sink receives materialized query results.
type Sink interface {
	Write(ctx context.Context, result *AggregatedResult) error
	Close() error
}

// ExportConfig configures an export sink.
type ExportConfig struct {
	// Type is the sink backend type
	Type SinkType

	// Format selects the encoding for file and stdout sinks.
	Format string

	// File sink configuration
	File *FileSinkConfig

	// NATS sink configuration
	NATS *NATSSinkConfig
}

// FileSinkConfig configures the file sink.
type FileSinkConfig struct {
	// Path is the destination file path
	Path string

	// Overwrite allows replacing an existing file
	Overwrite bool
}

// NATSSinkConfig configures the NATS sink.
type NATSSinkConfig struct {
	// URL is the NATS server URL
	URL string

	// Subject is the subject each record is published to
	Subject string

	// FlushTimeout bounds the final flush after publishing
	FlushTimeout time.Duration
}

// DefaultExportConfig returns default export configuration.
func DefaultExportConfig() *ExportConfig {
	return &ExportConfig{
		Type:   SinkTypeStdout,
		Format: constants.FormatCSV,
	}
}

// DefaultNATSSinkConfig returns default NATS sink configuration.
func DefaultNATSSinkConfig() *NATSSinkConfig {
	return &NATSSinkConfig{
		URL:          nats.DefaultURL,
		Subject:      constants.DefaultNATSSubject,
		FlushTimeout: constants.NATSFlushTimeout,
	}
}

// NewSinkFromConfig creates an export sink from configuration.
func NewSinkFromConfig(config *ExportConfig) (Sink, error) {
	if config == nil {
		config = DefaultExportConfig()
	}

	format := config.Format
	if format == "" {
		format = constants.FormatCSV
	}

	switch config.Type {
	case SinkTypeFile:
		if config.File == nil {
			return nil, ErrFileConfigRequired
		}

		return NewFileSink(config.File, format), nil

	case SinkTypeStdout:
		return NewStdoutSink(format), nil

	case SinkTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSSink(config.NATS)

	case SinkTypeNone:
		return NewNoOpSink(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSinkType, config.Type)
	}
}

// encodeResult renders a result in the requested format. CSV carries a header
// row; JSON and YAML carry the aggregated records.
func encodeResult(result *AggregatedResult, format string) ([]byte, error) {
	switch format {
	case constants.FormatCSV:
		return result.Table().CSVBytes()

	case constants.FormatJSON:
		data, err := json.MarshalIndent(result.Records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding records as JSON: %w", err)
		}

		return data, nil

	case constants.FormatYAML:
		data, err := yaml.Marshal(result.Records)
		if err != nil {
			return nil, fmt.Errorf("encoding records as YAML: %w", err)
		}

		return data, nil

	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

// FileSink writes results to a file on disk.
type FileSink struct {
	path      string
	overwrite bool
	format    string
}

// NewFileSink creates a new file sink.
func NewFileSink(config *FileSinkConfig, format string) *FileSink {
	return &FileSink{
		path:      config.Path,
		overwrite: config.Overwrite,
		format:    format,
	}
}

// Write encodes the result and writes it to the configured path. Unless
// overwrite is set, an existing file is left untouched.
func (s *FileSink) Write(ctx context.Context, result *AggregatedResult) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	data, err := encodeResult(result, s.format)
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !s.overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	file, err := os.OpenFile(s.path, flags, constants.ExportFilePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", constants.ErrExportFileExists, s.path)
		}

		return fmt.Errorf("creating export file: %w", err)
	}

	_, err = file.Write(data)
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("writing export file: %w", err)
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}

	return nil
}

// Close does nothing.
func (s *FileSink) Close() error {
	return nil
}

// WriterSink writes encoded results to an io.Writer.
type WriterSink struct {
	writer io.Writer
	format string
}

// NewWriterSink creates a sink over an arbitrary writer.
func NewWriterSink(writer io.Writer, format string) *WriterSink {
	return &WriterSink{
		writer: writer,
		format: format,
	}
}

// NewStdoutSink creates a sink over standard output.
func NewStdoutSink(format string) *WriterSink {
	return NewWriterSink(os.Stdout, format)
}

// Write encodes the result and writes it, newline-terminated.
func (s *WriterSink) Write(ctx context.Context, result *AggregatedResult) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	data, err := encodeResult(result, s.format)
	if err != nil {
		return err
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	_, err = s.writer.Write(data)
	if err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	return nil
}

// Close does nothing.
func (s *WriterSink) Close() error {
	return nil
}

// NATSSink publishes each record to a NATS subject as JSON.
type NATSSink struct {
	conn         *nats.Conn
	subject      string
	flushTimeout time.Duration
}

// NewNATSSink connects to the configured NATS server and creates a sink.
func NewNATSSink(config *NATSSinkConfig) (*NATSSink, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	url := config.URL
	if url == "" {
		url = nats.DefaultURL
	}

	subject := config.Subject
	if subject == "" {
		subject = constants.DefaultNATSSubject
	}

	flushTimeout := config.FlushTimeout
	if flushTimeout <= 0 {
		flushTimeout = constants.NATSFlushTimeout
	}

	conn, err := nats.Connect(url, nats.Name("soql-export"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return &NATSSink{
		conn:         conn,
		subject:      subject,
		flushTimeout: flushTimeout,
	}, nil
}

// Write publishes every aggregated record to the subject, then flushes.
func (s *NATSSink) Write(ctx context.Context, result *AggregatedResult) error {
	for _, record := range result.Records {
		err := ctx.Err()
		if err != nil {
			return err
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}

		err = s.conn.Publish(s.subject, data)
		if err != nil {
			return fmt.Errorf("publishing record: %w", err)
		}
	}

	err := s.conn.FlushTimeout(s.flushTimeout)
	if err != nil {
		return fmt.Errorf("flushing NATS connection: %w", err)
	}

	return nil
}

// Close drains the connection.
func (s *NATSSink) Close() error {
	return s.conn.Drain()
}

// NoOpSink is a sink that discards results.
type NoOpSink struct{}

// NewNoOpSink creates a new no-op sink.
func NewNoOpSink() *NoOpSink {
	return &NoOpSink{}
}

// Write does nothing.
func (s *NoOpSink) Write(ctx context.Context, result *AggregatedResult) error {
	return nil
}

// Close does nothing.
func (s *NoOpSink) Close() error {
	return nil
}

// MultiSink fans results out to several sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a new multi-sink.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks: sinks,
	}
}

// Write writes the result to every sink and returns the last error seen.
func (m *MultiSink) Write(ctx context.Context, result *AggregatedResult) error {
	var lastErr error

	for _, sink := range m.sinks {
		err := sink.Write(ctx, result)
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Close closes every sink and returns the last error seen.
func (m *MultiSink) Close() error {
	var lastErr error

	for _, sink := range m.sinks {
		err := sink.Close()
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// SinkBuilder helps build export configurations.
type SinkBuilder struct {
	config *ExportConfig
}

// NewSinkBuilder creates a new sink builder.
func NewSinkBuilder() *SinkBuilder {
	return &SinkBuilder{
		config: DefaultExportConfig(),
	}
}

// WithType sets the sink type.
func (b *SinkBuilder) WithType(sinkType SinkType) *SinkBuilder {
	b.config.Type = sinkType

	return b
}

// WithFormat sets the encoding format.
func (b *SinkBuilder) WithFormat(format string) *SinkBuilder {
	b.config.Format = format

	return b
}

// WithFile sets file sink configuration and selects the file sink.
func (b *SinkBuilder) WithFile(path string, overwrite bool) *SinkBuilder {
	b.config.Type = SinkTypeFile
	b.config.File = &FileSinkConfig{
		Path:      path,
		Overwrite: overwrite,
	}

	return b
}

// WithNATS sets NATS sink configuration and selects the NATS sink.
func (b *SinkBuilder) WithNATS(config *NATSSinkConfig) *SinkBuilder {
	b.config.Type = SinkTypeNATS
	b.config.NATS = config

	return b
}

// Build creates the sink from the configuration.
func (b *SinkBuilder) Build() (Sink, error) {
	return NewSinkFromConfig(b.config)
}
