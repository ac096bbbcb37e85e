// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads orchdash configuration.
//
// Configuration comes from a single file named by the --config flag or
// the ORCHDASH_CONFIG environment variable. There is no discovery and
// no per-field environment override: what the file says (on top of
// [Default]) is what runs. The one expansion performed is ${VAR} and
// ${VAR:-default} inside string values, so a shared file can point at
// different hosts.
//
// Files ending in .json or .jsonc are read as commented JSON; anything
// else is YAML. Both land in the same structs.
package config
