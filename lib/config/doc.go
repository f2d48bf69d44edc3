// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads oxysky's YAML configuration.
//
// Configuration comes from a single file named by the OXYSKY_CONFIG
// environment variable (via [Load]) or a --config flag (via [LoadFile]).
// Environment variables never override individual values; the file is the
// single source of truth. [Default] supplies the values a file leaves out,
// pointing at the public Bluesky service.
//
// The file may contain development, staging and production sections that
// override base values when [Config].Environment matches. Production
// without an explicit section logs at warn instead of info.
//
// Path fields support ${HOME}, ${OXYSKY_ROOT} and ${VAR:-default}
// expansion after loading.
//
// This package depends on no other oxysky packages.
package config
