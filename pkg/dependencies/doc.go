// Package dependencies tracks the modules each extension exports, uses and
// requires.
//
// Exports advertise modules an extension makes available to the project
// without the project installing them. A module an extension depends on
// directly is never exported. Extensions that come in a normal and a "-dev"
// flavour share exports: each fills the gaps in its counterpart's table
// without overwriting what the counterpart exports itself.
//
// Verify checks the requires tables against what a project actually has
// installed.
package dependencies
