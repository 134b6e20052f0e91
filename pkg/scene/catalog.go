package scene

import (
	"sort"
	"strings"
)

// SceneInfo describes a scene in the catalog
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // Name for listings
	Description string `json:"description"`
	Group       string `json:"group"` // Grouping category
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

type builtin struct {
	info  SceneInfo
	build func() (*Scene, error)
}

var builtins = []builtin{
	{
		info: SceneInfo{
			ID:          "hollow-sphere",
			Description: "Spherical shell with a loose core, cut away to show the cavity",
			Group:       "Booleans",
		},
		build: NewHollowSphereScene,
	},
	{
		info: SceneInfo{
			ID:          "bracket",
			Description: "Angle bracket in inches with drilled holes and a bolt",
			Group:       "Booleans",
		},
		build: NewBracketScene,
	},
	{
		info: SceneInfo{
			ID:          "overlap",
			Description: "Two blocks claiming the same space plus an air pocket",
			Group:       "Overlaps",
		},
		build: NewOverlapScene,
	},
	{
		info: SceneInfo{
			ID:          "sdf-part",
			Description: "Casting modelled as a signed distance field next to a plain sphere",
			Group:       "Primitives",
		},
		build: NewSDFPartScene,
	},
	{
		info: SceneInfo{
			ID:          "sphere-grid",
			Description: "20x20 grid of notched spheres, one region each",
			Group:       "Primitives",
		},
		build: NewSphereGridScene,
	},
}

func init() {
	for i := range builtins {
		builtins[i].info.DisplayName = titleCase(builtins[i].info.ID)
	}
}

// List returns every scene in the catalog
func List() []SceneInfo {
	scenes := make([]SceneInfo, len(builtins))
	for i, b := range builtins {
		scenes[i] = b.info
	}
	return scenes
}

// ListGroups returns the catalog grouped by category, groups and scenes
// sorted by name
func ListGroups() []SceneGroup {
	groupMap := make(map[string][]SceneInfo)
	for _, s := range List() {
		groupMap[s.Group] = append(groupMap[s.Group], s)
	}

	var groups []SceneGroup
	for name, scenes := range groupMap {
		sort.Slice(scenes, func(i, j int) bool {
			return scenes[i].DisplayName < scenes[j].DisplayName
		})
		groups = append(groups, SceneGroup{Name: name, Scenes: scenes})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// titleCase converts an identifier to title case
// e.g., "hollow-sphere" -> "Hollow Sphere"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
