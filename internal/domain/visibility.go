package domain

// VisibilityFlags are the caller-supplied reveal switches for item listings.
// Each flag widens visibility only where the caller's role permits it.
type VisibilityFlags struct {
	ShowVesselInactive bool
	ShowGlobalInactive bool
}

// ItemVisible decides whether a single item can be seen by a caller. The
// global flag is a hard floor for vessel users: a globally deactivated item is
// invisible to every vessel no matter what the per-vessel override says.
// Admins (no vessel scope) see globally inactive items only when asked to.
func ItemVisible(isAdmin bool, globalActive, vesselActive bool, flags VisibilityFlags) bool {
	if isAdmin {
		return globalActive || flags.ShowGlobalInactive
	}
	if !globalActive {
		return false
	}
	return vesselActive || flags.ShowVesselInactive
}
