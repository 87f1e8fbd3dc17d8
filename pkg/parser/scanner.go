package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser/strategies"
)

const (
	// DefaultWorkers indicates that the scanner should use GOMAXPROCS as the worker count.
	DefaultWorkers = 0
	// DefaultTimeout is the default scan timeout duration.
	DefaultTimeout = 5 * time.Minute
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
	// DefaultMaxFileSize is the default maximum file size for scanning (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// DefaultSkipPatterns contains directory names that are skipped by default during scanning.
var DefaultSkipPatterns = []string{
	".git",
	"vendor",
	"testdata",
	"node_modules",
	".cache",
}

var (
	// ErrScanCancelled is returned when scanning is cancelled via context.
	ErrScanCancelled = errors.New("scanner: scan cancelled")
	// ErrScanTimeout is returned when scanning exceeds the timeout duration.
	ErrScanTimeout = errors.New("scanner: scan timeout")
)

// Scanner discovers test files under a directory and lists the runnables
// of each one with a file-mode search.
type Scanner struct {
	registry *strategies.Registry
	options  *ScanOptions
	logger   *slog.Logger
}

// ScanResult contains the outcome of a scan operation.
type ScanResult struct {
	// Inventory contains all test files with at least one runnable.
	Inventory *domain.Inventory

	// Errors contains non-fatal errors encountered during scanning.
	Errors []ScanError

	// Stats provides scan statistics.
	Stats ScanStats
}

// ScanError represents an error that occurred during a specific phase of scanning.
type ScanError struct {
	// Err is the underlying error.
	Err error

	// Path is the file path where the error occurred (may be empty for non-file errors).
	Path string

	// Phase indicates which phase the error occurred in.
	// Values: "discovery", "read", "parsing"
	Phase string
}

// Error implements the error interface.
func (e ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e ScanError) Unwrap() error {
	return e.Err
}

// ScanStats provides statistics about the scan operation.
type ScanStats struct {
	// FilesScanned is the total number of test file candidates discovered.
	FilesScanned int

	// FilesMatched is the number of files with at least one runnable.
	FilesMatched int

	// FilesFailed is the number of files that could not be read or parsed.
	FilesFailed int

	// FilesSkipped is the number of candidates without runnables or framework.
	FilesSkipped int

	// Duration is the total scan duration.
	Duration time.Duration
}

// NewScanner creates a new scanner with the given options.
func NewScanner(opts ...ScanOption) *Scanner {
	options := &ScanOptions{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	return &Scanner{
		registry: options.Registry,
		options:  options,
		logger:   options.Logger,
	}
}

// Scan discovers test files under rootPath and searches each in file mode.
// Paths in the result are relative to rootPath.
func (s *Scanner) Scan(ctx context.Context, rootPath string) (*ScanResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	result := newScanResult(rootPath)

	testFiles, errs := s.discoverTestFiles(ctx, rootPath)
	for _, err := range errs {
		result.Errors = append(result.Errors, ScanError{
			Err:   err,
			Phase: "discovery",
		})
	}
	result.Stats.FilesScanned = len(testFiles)

	s.logger.Debug("test files discovered", slog.String("root", rootPath), slog.Int("count", len(testFiles)))

	return s.finish(ctx, rootPath, testFiles, result, startTime)
}

// ScanFiles scans specific files relative to rootPath, bypassing discovery.
func (s *Scanner) ScanFiles(ctx context.Context, rootPath string, files []string) (*ScanResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	result := newScanResult(rootPath)
	result.Stats.FilesScanned = len(files)

	return s.finish(ctx, rootPath, files, result, startTime)
}

func newScanResult(rootPath string) *ScanResult {
	return &ScanResult{
		Inventory: &domain.Inventory{
			RootPath: rootPath,
			Files:    []domain.TestFile{},
		},
		Errors: []ScanError{},
	}
}

func (s *Scanner) finish(ctx context.Context, rootPath string, files []string, result *ScanResult, startTime time.Time) (*ScanResult, error) {
	if len(files) > 0 {
		parsed, scanErrors := s.parseFilesParallel(ctx, rootPath, files)
		result.Inventory.Files = parsed
		result.Errors = append(result.Errors, scanErrors...)

		result.Stats.FilesMatched = len(parsed)
		result.Stats.FilesFailed = len(scanErrors)
		result.Stats.FilesSkipped = result.Stats.FilesScanned - result.Stats.FilesMatched - result.Stats.FilesFailed
	}
	result.Stats.Duration = time.Since(startTime)

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return result, ErrScanTimeout
		}
		if errors.Is(err, context.Canceled) {
			return result, ErrScanCancelled
		}
	}

	return result, nil
}

// discoverTestFiles walks rootPath to find test file candidates.
// Returns paths relative to rootPath.
func (s *Scanner) discoverTestFiles(ctx context.Context, rootPath string) ([]string, []error) {
	skipSet := buildSkipSet(append(DefaultSkipPatterns, s.options.ExcludePatterns...))

	var (
		files []string
		errs  []error
		mu    sync.Mutex
	)

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if walkErr != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("access error at %s: %w", path, walkErr))
			mu.Unlock()
			return nil
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("compute relative path for %s: %w", path, err))
			mu.Unlock()
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if shouldSkipDir(relPath, skipSet, s.options.ExcludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isTestFileCandidate(path) {
			return nil
		}

		if len(s.options.Patterns) > 0 && !matchesAnyPattern(relPath, s.options.Patterns) {
			return nil
		}

		if s.options.MaxFileSize > 0 {
			info, err := d.Info()
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("failed to get file info for %s: %w", path, err))
				mu.Unlock()
				return nil
			}
			if info.Size() > s.options.MaxFileSize {
				return nil
			}
		}

		mu.Lock()
		files = append(files, relPath)
		mu.Unlock()

		return nil
	})

	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			errs = append(errs, err)
		}
	}

	return files, errs
}

func (s *Scanner) parseFilesParallel(ctx context.Context, rootPath string, files []string) ([]domain.TestFile, []ScanError) {
	workers := s.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	var (
		mu         sync.Mutex
		testFiles  = make([]domain.TestFile, 0, len(files))
		scanErrors = make([]ScanError, 0)
	)

	for _, file := range files {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			testFile, scanErr := s.parseFile(gCtx, rootPath, file)

			mu.Lock()
			defer mu.Unlock()

			if scanErr != nil {
				scanErrors = append(scanErrors, *scanErr)
				return nil
			}

			if testFile != nil {
				testFiles = append(testFiles, *testFile)
			}

			return nil
		})
	}

	_ = g.Wait()

	// Sort by path for deterministic output order.
	sort.Slice(testFiles, func(i, j int) bool {
		return testFiles[i].Path < testFiles[j].Path
	})
	sort.Slice(scanErrors, func(i, j int) bool {
		return scanErrors[i].Path < scanErrors[j].Path
	})

	return testFiles, scanErrors
}

// parseFile runs a file-mode search. Files without a strategy or without
// runnables yield neither a TestFile nor an error.
func (s *Scanner) parseFile(ctx context.Context, rootPath, path string) (*domain.TestFile, *ScanError) {
	if err := ctx.Err(); err != nil {
		return nil, &ScanError{Err: err, Path: path, Phase: "parsing"}
	}

	strategy, err := s.registry.ForFile(path, domain.CapabilityTestRunner)
	if err != nil {
		return nil, nil
	}

	content, err := os.ReadFile(filepath.Join(rootPath, filepath.FromSlash(path)))
	if err != nil {
		return nil, &ScanError{Err: err, Path: path, Phase: "read"}
	}

	target := domain.NewTarget(domain.CapabilityTestRunner, domain.NewBuffer(content, path, domain.Position{}))
	target.OverrideMode(domain.SearchFile)

	if !strategy.Detect(ctx, target) {
		s.logger.Debug("file not detected", slog.String("path", path), slog.String("framework", strategy.Name()))
		return nil, nil
	}

	runnables, err := strategy.Runnables(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &ScanError{Err: fmt.Errorf("search: %w", err), Path: path, Phase: "parsing"}
	}

	return &domain.TestFile{
		Framework: strategy.Name(),
		Language:  strategy.Language(),
		Path:      path,
		Runnables: runnables,
	}, nil
}

func buildSkipSet(patterns []string) map[string]bool {
	skipSet := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		skipSet[p] = true
	}
	return skipSet
}

func shouldSkipDir(relPath string, skipSet map[string]bool, globs []string) bool {
	if relPath == "." {
		return false
	}

	if skipSet[filepath.Base(relPath)] {
		return true
	}
	return matchesAnyPattern(relPath, globs)
}

func isTestFileCandidate(path string) bool {
	lang, ok := domain.LanguageForPath(path)
	if !ok {
		return false
	}

	switch lang {
	case domain.LanguageGo:
		return isGoTestFile(path)
	default:
		return false
	}
}

func isGoTestFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, "_test.go")
}

func matchesAnyPattern(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Scan discovers and searches test files under rootPath with a new Scanner.
func Scan(ctx context.Context, rootPath string, opts ...ScanOption) (*ScanResult, error) {
	scanner := NewScanner(opts...)
	return scanner.Scan(ctx, rootPath)
}
