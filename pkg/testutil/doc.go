// Package testutil builds throwaway projects on disk for tests.
//
// A Project is a temporary directory with a package.json, optional
// roc.config.toml and extensions installed under node_modules:
//
//	p := testutil.NewProject(t).
//		Dependency("roc-package-web", "^1.0.0").
//		Extension("roc-package-web", "1.0.0", `[commands]
//	start = "node server.js"`)
//
// Everything lives under t.TempDir() and environment changes go through
// t.Setenv, so tests stay isolated.
package testutil
