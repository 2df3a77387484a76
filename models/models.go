package models

type RootCtx struct {
	LogLevel string
	NoColor  bool
}

// Dependency is a single node-line from a dependency:tree report. Line holds
// the normalized text the node was parsed from and is what gets printed.
type Dependency struct {
	GroupId    string
	ArtifactId string
	Extension  string
	Version    string
	Scope      string
	Omitted    bool
	Depth      int
	Line       string
}

func (d Dependency) Coordinates() string {
	return d.GroupId + ":" + d.ArtifactId + ":" + d.Extension + ":" + d.Version
}
