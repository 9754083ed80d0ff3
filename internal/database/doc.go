// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

// Package database provides DuckDB-backed persistence for the
// recommendation core.
//
// The package owns the schema (books, interaction events, taxonomy,
// genre views, ratings, reading log, popularity entries, rating
// preferences) and exposes typed query methods; callers never build SQL
// text. Query filtering goes through the typed predicate builder in
// filter.go.
//
// The recommendation core consumes this package through the small
// adapter types in provider.go, which satisfy the core's store
// interfaces without the core importing this package.
package database
