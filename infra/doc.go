// Package infra contains technical adapters such as greeting channels,
// metrics exporters and the Sentry monitor. These packages should depend
// only on the interfaces defined in the core packages.
package infra
