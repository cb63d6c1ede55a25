package model

// ReleaseReference points at the most recently published release
type ReleaseReference struct {
	TagName string   // Tag name as published
	Version *Version // Parsed tag, nil when the tag is not a semantic version
}

// Release represents a release created by the publisher
type Release struct {
	ID      int64
	TagName string
	Name    string
	URL     string
	Assets  []string // Uploaded asset names
}
