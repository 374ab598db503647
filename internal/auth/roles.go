package auth

import (
	"github.com/google/uuid"
)

// Role is a user's access level.
type Role string

const (
	RoleCrew       Role = "crew"
	RoleCaptain    Role = "captain"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCrew || r == RoleCaptain || r == RoleSuperAdmin
}

// Scope identifies a caller after authentication. VesselID is nil only for
// super_admin, which operates across vessels.
type Scope struct {
	UserID   uuid.UUID
	Role     Role
	VesselID *uint
}

// IsAdmin reports whether the caller is the cross-vessel administrator.
func (s Scope) IsAdmin() bool {
	return s.Role == RoleSuperAdmin
}

// SameVessel reports whether the caller is scoped to the given vessel.
// Admins match every vessel.
func (s Scope) SameVessel(vesselID uint) bool {
	if s.IsAdmin() {
		return true
	}
	return s.VesselID != nil && *s.VesselID == vesselID
}

// Capability names a guarded operation.
type Capability string

const (
	CapViewCatalog         Capability = "view_catalog"
	CapEditRequisition     Capability = "edit_requisition"
	CapChangeStatus        Capability = "change_requisition_status"
	CapReceiveItems        Capability = "receive_items"
	CapToggleVesselActive  Capability = "toggle_item_vessel_active"
	CapToggleGlobalActive  Capability = "toggle_item_global_active"
	CapManageItems         Capability = "manage_items"
	CapManageCrew          Capability = "manage_crew"
	CapManageVessels       Capability = "manage_vessels"
	CapManageCompanies     Capability = "manage_companies"
	CapManageTags          Capability = "manage_tags"
)

// capabilities is the explicit role capability table. It is a flat table
// rather than an inheritance chain: super_admin satisfies every check,
// captain satisfies every crew check on its own vessel.
var capabilities = map[Capability]map[Role]bool{
	CapViewCatalog:        {RoleCrew: true, RoleCaptain: true, RoleSuperAdmin: true},
	CapEditRequisition:    {RoleCrew: true, RoleCaptain: true, RoleSuperAdmin: true},
	CapChangeStatus:       {RoleCrew: true, RoleCaptain: true, RoleSuperAdmin: true},
	CapReceiveItems:       {RoleCrew: true, RoleCaptain: true, RoleSuperAdmin: true},
	CapToggleVesselActive: {RoleCaptain: true, RoleSuperAdmin: true},
	CapToggleGlobalActive: {RoleSuperAdmin: true},
	CapManageItems:        {RoleCrew: true, RoleCaptain: true, RoleSuperAdmin: true},
	CapManageCrew:         {RoleCaptain: true, RoleSuperAdmin: true},
	CapManageVessels:      {RoleSuperAdmin: true},
	CapManageCompanies:    {RoleCrew: true, RoleCaptain: true, RoleSuperAdmin: true},
	CapManageTags:         {RoleSuperAdmin: true},
}

// Can reports whether the caller's role grants the capability. Vessel
// ownership is checked separately by the services; a failed ownership check
// surfaces as NotFound, not Unauthorized, so callers cannot probe other
// vessels' data.
func Can(scope Scope, cap Capability) bool {
	allowed, ok := capabilities[cap]
	if !ok {
		return false
	}
	return allowed[scope.Role]
}
