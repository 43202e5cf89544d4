package sysinfo

import "runtime/debug"

var readBuildInfo = debug.ReadBuildInfo

// vcsRevision returns the commit the binary was built from, when the
// toolchain stamped one.
func vcsRevision() (string, bool) {
	bi, ok := readBuildInfo()
	if !ok {
		return "", false
	}

	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value, true
		}
	}

	return "", false
}
