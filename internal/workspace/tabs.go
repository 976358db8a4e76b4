package workspace

import (
	"fmt"
	"strings"

	"routegraph/dashboard/internal/auth"
)

// Tab is one section of the dashboard shell.
type Tab string

const (
	TabRoutes      Tab = "routes"
	TabLocations   Tab = "locations"
	TabCoordinates Tab = "coordinates"
	TabSpecial     Tab = "special"
	TabImport      Tab = "import"
	TabUsers       Tab = "users"
)

var allTabs = []Tab{TabRoutes, TabLocations, TabCoordinates, TabSpecial, TabImport, TabUsers}

func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allTabs {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// AdminOnly reports whether the tab is hidden from non-admin users.
func (t Tab) AdminOnly() bool { return t == TabUsers }

// VisibleTabs lists the tabs shown to id, in display order.
func VisibleTabs(id auth.Identity) []Tab {
	out := make([]Tab, 0, len(allTabs))
	for _, t := range allTabs {
		if t.AdminOnly() && !id.IsAdmin() {
			continue
		}
		out = append(out, t)
	}
	return out
}
