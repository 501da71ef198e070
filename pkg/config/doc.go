// Package config loads roc's own configuration: which extensions a project
// uses and the settings it applies over them.
//
// Layers, later ones winning:
//
//  1. embedded defaults
//  2. roc.config.toml in the project directory
//  3. ROC_ environment variables, "__" separating nested keys
//     (ROC_PATTERNS__PACKAGES)
package config
