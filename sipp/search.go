package sipp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/railsignal/flexsipp/railerr"
)

// ErrSearchFailed wraps any non-zero exit, timeout, or unparseable stdout
// from the search executable into a single railerr(KindSearch) — spec.md
// §7's "Search-failure: surfaced as a single failure; no partial results
// consumed."
var ErrSearchFailed = errors.New("sipp: downstream search failed")

// searchBinaryNames is tried in order when the caller does not pin an
// explicit executable path (spec.md §6.3: "Executable name flexsipp (or
// atsipp)").
var searchBinaryNames = []string{"flexsipp", "atsipp"}

// RunSearchOption configures RunSearch.
type RunSearchOption func(*runSearchConfig)

type runSearchConfig struct {
	binary string
	log    zerolog.Logger
}

// WithBinary pins the search executable instead of probing PATH for the
// default names.
func WithBinary(path string) RunSearchOption {
	return func(c *runSearchConfig) { c.binary = path }
}

// WithSearchLogger attaches a structured logger for debug-level tracing of
// the parsed Results (SPEC_FULL.md §4).
func WithSearchLogger(l zerolog.Logger) RunSearchOption {
	return func(c *runSearchConfig) { c.log = l }
}

// RunSearch invokes the downstream search executable against instancePath
// and returns its parsed Results (spec.md §5's "downstream search is a
// separate process invoked with a timeout; parent blocks until completion
// or timeout; on timeout the child is terminated and failure is reported
// with no partial results consumed").
func RunSearch(ctx context.Context, timeout time.Duration, origin, destination, instancePath string, startTime float64, opts ...RunSearchOption) (*Results, error) {
	cfg := runSearchConfig{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	binary := cfg.binary
	if binary == "" {
		var err error
		binary, err = resolveBinary()
		if err != nil {
			return nil, railerr.Wrap(railerr.KindSearch, err)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binary,
		"--start", origin,
		"--goal", destination,
		"--edgegraph", instancePath,
		"--search", "repeat",
		"--startTime", strconv.FormatFloat(startTime, 'g', -1, 64),
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	if runCtx.Err() != nil {
		cfg.log.Error().Str("binary", binary).Dur("timeout", timeout).Msg("sipp: search timed out")
		return nil, railerr.Wrap(railerr.KindSearch, fmt.Errorf("%w: timeout after %s", ErrSearchFailed, timeout))
	}
	if err != nil {
		cfg.log.Error().Err(err).Str("binary", binary).Msg("sipp: search exited with an error")
		return nil, railerr.Wrap(railerr.KindSearch, fmt.Errorf("%w: %v", ErrSearchFailed, err))
	}

	results, err := ParseResults(stdout.String())
	if err != nil {
		return nil, railerr.Wrap(railerr.KindSearch, fmt.Errorf("%w: %v", ErrSearchFailed, err))
	}

	cfg.log.Debug().
		Int("nodes_generated", results.Stats.NodesGenerated).
		Int("nodes_expanded", results.Stats.NodesExpanded).
		Int("paths", len(results.Paths)).
		Int64("search_time_ns", results.SearchTimeNanos).
		Msg("sipp: search completed")

	return results, nil
}

func resolveBinary() (string, error) {
	var lastErr error
	for _, name := range searchBinaryNames {
		path, err := exec.LookPath(name)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w: no search executable found on PATH (tried %v): %v", ErrSearchFailed, searchBinaryNames, lastErr)
}
