package loader

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dario.cat/mergo"

	"github.com/erraggy/ramltools"
	"github.com/erraggy/ramltools/internal/options"
)

// Default resource limits.
const (
	// DefaultMaxRefDepth is the maximum number of $ref hops followed while
	// resolving a single value.
	DefaultMaxRefDepth = 100
	// DefaultMaxIncludeDepth is the maximum nesting of includes below the
	// root document.
	DefaultMaxIncludeDepth = 64
	// DefaultMaxCachedDocuments is the maximum number of distinct documents
	// a single load opens as $ref targets. Included files do not count.
	DefaultMaxCachedDocuments = 100
	// DefaultMaxFileSize is the maximum size of any single file or response (10MB).
	DefaultMaxFileSize int64 = 10 * 1024 * 1024
	// DefaultHTTPTimeout is the timeout of the default HTTP client.
	DefaultHTTPTimeout = 30 * time.Second
)

// Option is a function that configures a Loader or a LoadWithOptions call
type Option func(*config) error

// config holds loader configuration. Exported fields take their defaults
// from defaultConfig when left at the zero value.
type config struct {
	BaseDir            string
	UserAgent          string
	HTTPClient         *http.Client
	HTTPTimeout        time.Duration
	InsecureSkipVerify bool
	NoRemoteRefs       bool
	NoRemoteIncludes   bool
	Logger             Logger
	Metrics            *Metrics

	// Resource limits (0 means use default)
	MaxRefDepth        int
	MaxIncludeDepth    int
	MaxCachedDocuments int
	MaxFileSize        int64

	// Roles maps extensions to content roles; user entries win over defaults
	Roles map[string]ContentRole

	// Input source for LoadWithOptions (exactly one must be set)
	input inputSource
}

type inputSource struct {
	filePath *string
	reader   io.Reader
	bytes    []byte
}

func defaultConfig() config {
	return config{
		BaseDir:            ".",
		UserAgent:          ramltools.UserAgent(),
		HTTPTimeout:        DefaultHTTPTimeout,
		Logger:             NopLogger{},
		MaxRefDepth:        DefaultMaxRefDepth,
		MaxIncludeDepth:    DefaultMaxIncludeDepth,
		MaxCachedDocuments: DefaultMaxCachedDocuments,
		MaxFileSize:        DefaultMaxFileSize,
		Roles:              defaultRoles(),
	}
}

// applyOptions applies option functions, validates limits and fills in
// defaults for everything left unset.
func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := validateLimits(cfg); err != nil {
		return nil, err
	}

	if err := mergo.Merge(cfg, defaultConfig()); err != nil {
		return nil, fmt.Errorf("loader: applying defaults: %w", err)
	}
	return cfg, nil
}

func validateLimits(cfg *config) error {
	const prefix = "loader"
	checks := []error{
		options.ValidateNonNegative(prefix, "max ref depth", cfg.MaxRefDepth),
		options.ValidateNonNegative(prefix, "max include depth", cfg.MaxIncludeDepth),
		options.ValidateNonNegative(prefix, "max cached documents", cfg.MaxCachedDocuments),
		options.ValidateNonNegative(prefix, "max file size", cfg.MaxFileSize),
		options.ValidateNonNegative(prefix, "HTTP timeout", cfg.HTTPTimeout),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

func (cfg *config) validateInput() error {
	return options.ValidateSingleInputSource(
		"loader: must specify an input source (use WithFilePath, WithReader, or WithBytes)",
		"loader: must specify exactly one input source",
		cfg.input.filePath != nil, cfg.input.reader != nil, cfg.input.bytes != nil,
	)
}

// WithFilePath specifies a file path or URL as the input source
func WithFilePath(path string) Option {
	return func(cfg *config) error {
		cfg.input.filePath = &path
		return nil
	}
}

// WithReader specifies an io.Reader as the input source
func WithReader(r io.Reader) Option {
	return func(cfg *config) error {
		cfg.input.reader = r
		return nil
	}
}

// WithBytes specifies a byte slice as the input source
func WithBytes(data []byte) Option {
	return func(cfg *config) error {
		cfg.input.bytes = data
		return nil
	}
}

// WithBaseDir sets the directory that relative includes and references of
// in-memory input resolve against. LoadFile always uses the file's own
// directory. Default: "."
func WithBaseDir(dir string) Option {
	return func(cfg *config) error {
		cfg.BaseDir = dir
		return nil
	}
}

// WithRemoteRefs enables or disables resolving http:// and https:// $ref
// targets. Default: true
func WithRemoteRefs(enabled bool) Option {
	return func(cfg *config) error {
		cfg.NoRemoteRefs = !enabled
		return nil
	}
}

// WithRemoteIncludes enables or disables fetching !include targets given as
// URLs. Default: true
func WithRemoteIncludes(enabled bool) Option {
	return func(cfg *config) error {
		cfg.NoRemoteIncludes = !enabled
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for remote content.
// The InsecureSkipVerify option is ignored when a custom client is provided;
// configure TLS on the client's transport instead.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) error {
		cfg.HTTPClient = client
		return nil
	}
}

// WithHTTPTimeout sets the timeout of the default HTTP client. Default: 30s
func WithHTTPTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		cfg.HTTPTimeout = d
		return nil
	}
}

// WithUserAgent sets the User-Agent string for HTTP requests
func WithUserAgent(ua string) Option {
	return func(cfg *config) error {
		cfg.UserAgent = ua
		return nil
	}
}

// WithInsecureSkipVerify disables TLS certificate verification for remote
// content. Use only with trusted servers using self-signed certificates.
func WithInsecureSkipVerify(enabled bool) Option {
	return func(cfg *config) error {
		cfg.InsecureSkipVerify = enabled
		return nil
	}
}

// WithLogger sets a structured logger for debug output.
// By default, no logging is performed.
func WithLogger(l Logger) Option {
	return func(cfg *config) error {
		cfg.Logger = l
		return nil
	}
}

// WithMetrics records load statistics into m.
func WithMetrics(m *Metrics) Option {
	return func(cfg *config) error {
		cfg.Metrics = m
		return nil
	}
}

// WithMaxRefDepth sets the maximum number of $ref hops followed for a single
// value. 0 uses DefaultMaxRefDepth.
func WithMaxRefDepth(depth int) Option {
	return func(cfg *config) error {
		cfg.MaxRefDepth = depth
		return nil
	}
}

// WithMaxIncludeDepth sets the maximum nesting of included files.
// 0 uses DefaultMaxIncludeDepth.
func WithMaxIncludeDepth(depth int) Option {
	return func(cfg *config) error {
		cfg.MaxIncludeDepth = depth
		return nil
	}
}

// WithMaxCachedDocuments sets the maximum number of distinct documents a
// load may open as $ref targets. JSON files reached by !include are not
// counted. 0 uses DefaultMaxCachedDocuments.
func WithMaxCachedDocuments(count int) Option {
	return func(cfg *config) error {
		cfg.MaxCachedDocuments = count
		return nil
	}
}

// WithMaxFileSize sets the maximum size in bytes of any file or response.
// 0 uses DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(cfg *config) error {
		cfg.MaxFileSize = size
		return nil
	}
}

// WithRoleExtensions assigns role to the given file extensions, e.g.
// WithRoleExtensions(loader.RoleJSON, ".schema"). Extensions are matched
// case-insensitively; a missing leading dot is added.
func WithRoleExtensions(role ContentRole, exts ...string) Option {
	return func(cfg *config) error {
		if role < RoleDocument || role > RoleRaw {
			return fmt.Errorf("loader: unknown content role %d", role)
		}
		if cfg.Roles == nil {
			cfg.Roles = make(map[string]ContentRole, len(exts))
		}
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" || ext == "." {
				return fmt.Errorf("loader: empty extension for role %s", role)
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cfg.Roles[ext] = role
		}
		return nil
	}
}
