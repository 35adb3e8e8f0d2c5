package sci

import "fmt"

// Version identifies the protocol implementation, mirroring the original
// SCI.h version() accessor (§6 Slave public API).
type Version struct {
	Major, Minor, Patch uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// currentVersion is this port's version triple.
var currentVersion = Version{Major: 1, Minor: 0, Patch: 0}

// GetVersion returns the implementation's version triple.
func GetVersion() Version { return currentVersion }
