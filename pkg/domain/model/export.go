package model

// ExportPresetsFile is the Godot export configuration file name
const ExportPresetsFile = "export_presets.cfg"

// ExportPreset is one [preset.N] section of export_presets.cfg
type ExportPreset struct {
	Index      int
	Name       string
	Platform   string
	ExportPath string
}

// IsMacOS reports whether the preset targets macOS. Godot already emits a .zip for it.
func (p ExportPreset) IsMacOS() bool {
	return p.Platform == "macOS" || p.Platform == "Mac OSX"
}

// Artifact is a built output for one export preset. Path is either a directory
// holding the exported files or a single file such as an archive.
type Artifact struct {
	Name     string // Logical export name, the preset name
	Path     string
	Platform string
}
