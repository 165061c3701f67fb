// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

// Validation sentinels returned by [ClientConfig.validate], one per
// configuration group so callers can report which section is broken.
var (
	// ErrInvalidStorageConfigs marks an empty or in-memory local DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")

	// ErrInvalidAdapterConfigs marks a missing remote base URL or zero
	// request timeout.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")

	// ErrInvalidWorkerConfigs marks a zero background sync interval.
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
