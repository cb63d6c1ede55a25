package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrInvalidVersion indicates a string is not a semantic version
	ErrInvalidVersion = goerr.New("invalid semantic version")

	// ErrInvalidBaseVersion indicates the configured base version cannot be parsed
	ErrInvalidBaseVersion = goerr.New("base version is not a valid semantic version")

	// ErrMissingCredential indicates release creation was requested without a GitHub credential
	ErrMissingCredential = goerr.New("release creation requires a GitHub token or GitHub App credential")

	// ErrMissingExportConfig indicates the project has no export_presets.cfg
	ErrMissingExportConfig = goerr.New("export_presets.cfg not found in project, create export presets in the Godot editor first")

	// ErrInvalidRepository indicates a repository identifier is not owner/name
	ErrInvalidRepository = goerr.New("repository must be in owner/name form")
)
