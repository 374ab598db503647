package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemVisible(t *testing.T) {
	tests := []struct {
		name          string
		isAdmin       bool
		globalActive  bool
		vesselActive  bool
		flags         VisibilityFlags
		visible       bool
	}{
		{"vessel user sees active item", false, true, true, VisibilityFlags{}, true},
		{"vessel user never sees globally inactive", false, false, true, VisibilityFlags{}, false},
		{"global flag is a hard floor regardless of reveal flags", false, false, true, VisibilityFlags{ShowVesselInactive: true, ShowGlobalInactive: true}, false},
		{"vessel-inactive hidden by default", false, true, false, VisibilityFlags{}, false},
		{"vessel-inactive revealed on request", false, true, false, VisibilityFlags{ShowVesselInactive: true}, true},
		{"admin sees active item", true, true, false, VisibilityFlags{}, true},
		{"admin hides globally inactive by default", true, false, true, VisibilityFlags{}, false},
		{"admin reveals globally inactive on request", true, false, false, VisibilityFlags{ShowGlobalInactive: true}, true},
		{"vessel override does not affect admin", true, true, false, VisibilityFlags{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemVisible(tt.isAdmin, tt.globalActive, tt.vesselActive, tt.flags)
			require.Equal(t, tt.visible, got)
		})
	}
}
