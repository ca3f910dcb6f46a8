// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides the survey fixture and a log
// capturing slog handler for tests.
package shared
