package menu

// View is a point-in-time copy of a Resolver's state.
type View struct {
	Phase        Phase     `json:"-"`
	Entries      []Entry   `json:"entries"`
	Expansion    Expansion `json:"expansion"`
	CurrentPath  string    `json:"currentPath"`
	ActiveParent int       `json:"activeParent,omitempty"`
	ActiveSub    int       `json:"activeSub,omitempty"`
	HasActive    bool      `json:"hasActive"`
}

// Loading reports whether the tree has not arrived yet.
func (v View) Loading() bool {
	return v.Phase == PhaseLoading
}

// Group is a top-level menu group as the sidebar renders it.
type Group struct {
	Seq      int
	Name     string
	Icon     string
	Expanded bool
	Active   bool
	// Chevron is only drawn for groups that have children.
	Chevron bool
	Items   []Link
}

// Link is a sidebar sub-item.
type Link struct {
	Seq    int
	Name   string
	Icon   string
	Href   string
	Active bool
}

// Groups lays out the sidebar in entry order.
func (v View) Groups() []Group {
	groups := make([]Group, 0, len(v.Entries))
	for _, e := range v.Entries {
		g := Group{
			Seq:      e.Main.SequenceID,
			Name:     e.Main.Name,
			Icon:     MainIcon(e.Main.Name),
			Expanded: v.Expansion.Open(e.Main.SequenceID),
			Active:   v.HasActive && v.ActiveParent == e.Main.SequenceID,
			Chevron:  len(e.Subs) > 0,
			Items:    make([]Link, 0, len(e.Subs)),
		}
		for _, s := range e.Subs {
			g.Items = append(g.Items, Link{
				Seq:    s.SequenceID,
				Name:   s.Name,
				Icon:   SubIcon(s.Name),
				Href:   SubItemPath(s),
				Active: g.Active && v.ActiveSub == s.SequenceID,
			})
		}
		groups = append(groups, g)
	}
	return groups
}

// Crumb is one breadcrumb step; the last crumb has no Href.
type Crumb struct {
	Label string
	Href  string
}

// HomeLabel heads every breadcrumb trail.
const HomeLabel = "Ana Sayfa"

// Trail builds the breadcrumbs for the current page from the active
// sub-item. Without a match only the home crumb is returned.
func (v View) Trail(home string) []Crumb {
	if !v.HasActive {
		return []Crumb{{Label: HomeLabel}}
	}
	for _, e := range v.Entries {
		if e.Main.SequenceID != v.ActiveParent {
			continue
		}
		for _, s := range e.Subs {
			if s.SequenceID == v.ActiveSub {
				return []Crumb{
					{Label: HomeLabel, Href: home},
					{Label: e.Main.Name},
					{Label: s.Name},
				}
			}
		}
	}
	return []Crumb{{Label: HomeLabel}}
}
