package domain

import mapset "github.com/deckarep/golang-set/v2"

// DefaultTarget is the sentinel target used on platforms without a target
// concept. It is never operator supplied.
const DefaultTarget = "default"

// SubscribeKey uniquely identifies a subscription within the whole config.
type SubscribeKey struct {
	GroupNumber  string
	PlatformName string
	Target       string
}

// SubscribeConfig is one content subscription of a group. TargetName is
// derived: it only ever holds the result of a successful target-name
// resolution and is cleared whenever Target changes before resolution.
type SubscribeConfig struct {
	PlatformName string
	Target       string
	TargetName   string
	Categories   mapset.Set[int]
	Tags         mapset.Set[string]
}

// Key returns the uniqueness key of the subscription within the given group.
func (s SubscribeConfig) Key(groupNumber string) SubscribeKey {
	return SubscribeKey{
		GroupNumber:  groupNumber,
		PlatformName: s.PlatformName,
		Target:       s.Target,
	}
}

// Group mirrors a server-owned chat group and its subscriptions. The client
// copy is replaced wholesale on every refetch, never patched in place.
type Group struct {
	GroupNumber string
	DisplayName string
	Subscribes  []SubscribeConfig
}
