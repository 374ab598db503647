package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func scopeFor(role Role, vesselID *uint) Scope {
	return Scope{UserID: uuid.New(), Role: role, VesselID: vesselID}
}

func TestCapabilityTable(t *testing.T) {
	v1 := uint(1)
	crew := scopeFor(RoleCrew, &v1)
	captain := scopeFor(RoleCaptain, &v1)
	admin := scopeFor(RoleSuperAdmin, nil)

	tests := []struct {
		cap     Capability
		crew    bool
		captain bool
		admin   bool
	}{
		{CapViewCatalog, true, true, true},
		{CapEditRequisition, true, true, true},
		{CapChangeStatus, true, true, true},
		{CapReceiveItems, true, true, true},
		{CapToggleVesselActive, false, true, true},
		{CapToggleGlobalActive, false, false, true},
		{CapManageCrew, false, true, true},
		{CapManageVessels, false, false, true},
		{CapManageTags, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.cap), func(t *testing.T) {
			require.Equal(t, tt.crew, Can(crew, tt.cap), "crew")
			require.Equal(t, tt.captain, Can(captain, tt.cap), "captain")
			require.Equal(t, tt.admin, Can(admin, tt.cap), "super_admin")
		})
	}
}

func TestScopeSameVessel(t *testing.T) {
	v1, v2 := uint(1), uint(2)

	crew := scopeFor(RoleCrew, &v1)
	require.True(t, crew.SameVessel(v1))
	require.False(t, crew.SameVessel(v2))

	admin := scopeFor(RoleSuperAdmin, nil)
	require.True(t, admin.SameVessel(v1))
	require.True(t, admin.SameVessel(v2))
}

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := GenerateToken(secret, userID, RoleCaptain, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken(secret, token)
	require.NoError(t, err)
	require.Equal(t, userID, parsed)

	_, err = ParseToken("wrong-secret", token)
	require.Error(t, err)

	_, err = ParseToken(secret, "not-a-token")
	require.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), RoleCrew, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.True(t, CheckPassword(hash, "s3cret"))
	require.False(t, CheckPassword(hash, "wrong"))
}
