package version

import "runtime/debug"

// The version can be set at build time:
// go build -ldflags "-X github.com/vsariola/polysynth/version.Version=$(git describe --dirty)"

var Version string

// Hash is the short vcs revision the binary was built from, "-dirty" if the
// working tree had changes.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}()

// VersionOrHash is Version if it was set, otherwise Hash, otherwise "devel".
var VersionOrHash = func() string {
	switch {
	case Version != "":
		return Version
	case Hash != "":
		return Hash
	}
	return "devel"
}()
