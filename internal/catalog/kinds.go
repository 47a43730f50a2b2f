package catalog

import "fmt"

// TrafficKind names the quantity stored in a traffic cube.
type TrafficKind string

const (
	Uplink         TrafficKind = "UL"
	Downlink       TrafficKind = "DL"
	UplinkDownlink TrafficKind = "UL_AND_DL"
	Users          TrafficKind = "USERS"
)

// ParseTrafficKind validates a kind name.
func ParseTrafficKind(s string) (TrafficKind, error) {
	switch k := TrafficKind(s); k {
	case Uplink, Downlink, UplinkDownlink, Users:
		return k, nil
	}
	return "", fmt.Errorf("unknown traffic kind %q", s)
}

// Composite reports whether the kind is derived from an uplink and a downlink
// cube rather than read directly from files.
func (k TrafficKind) Composite() bool {
	return k == UplinkDownlink || k == Users
}

// Level is the spatial granularity of a traffic file tree.
type Level string

const (
	LevelTile Level = "tile"
	LevelIris Level = "iris"
)

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	switch l := Level(s); l {
	case LevelTile, LevelIris:
		return l, nil
	}
	return "", fmt.Errorf("unknown geographic level %q", s)
}
