// Package assets provides mom preambles and HTML stylesheets.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in assets compiled into the binary
//	    ├── FilesystemLoader  - assets from a directory on disk
//	    └── AssetResolver     - custom-first lookup with embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── preambles/
//	│   └── {name}.mom   # mom macro preamble (e.g., default.mom)
//	└── styles/
//	    └── {name}.css   # stylesheet for the browser engine
//
// # Preamble discovery
//
// FindPreamble looks for a preamble.mom next to the source file, then in
// the user configuration directory, and falls back to the embedded
// default.
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
