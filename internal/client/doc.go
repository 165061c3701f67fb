// SPDX-License-Identifier: Apache-2.0

// Package client implements the sync agent runtime.
//
// It wires local storage, the remote adapter, the offline-sync services and
// background workers into a single process lifecycle.
package client
