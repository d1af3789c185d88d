package routes

import (
	"strings"
)

// DashboardRoot is the prefix every panel page lives under.
const DashboardRoot = "/dashboard"

const (
	defaultController = "page"
	defaultAction     = "index"
)

// Key identifies a backend menu target by its MVC routing descriptor.
type Key struct {
	Controller string
	Action     string
}

type override struct {
	key  Key
	path string
}

// overrides maps backend (controller, action) pairs to panel paths that do not
// follow the /dashboard/{controller}/{action} convention. Keys are unique.
var overrides = []override{
	{Key{"Store", "Index"}, "/dashboard/stok-tanimlari/depo-tanimlama"},
	{Key{"Home", "Index"}, DashboardRoot},
}

// Resolve maps a (controller, action) pair to a panel path.
// Overrides are matched exactly; anything else becomes
// /dashboard/{controller}/{action} in lower case, with "page" and "index"
// standing in for missing tokens.
func Resolve(controller, action string) string {
	for _, o := range overrides {
		if o.key.Controller == controller && o.key.Action == action {
			return o.path
		}
	}

	c := strings.ToLower(strings.TrimSpace(controller))
	if c == "" {
		c = defaultController
	}
	a := strings.ToLower(strings.TrimSpace(action))
	if a == "" {
		a = defaultAction
	}

	return DashboardRoot + "/" + c + "/" + a
}

// Lookup is the reverse of Resolve: it returns a key that resolves to path.
// Override paths give their backend key; conventional paths give the
// lower-cased segments. Anything else is not a panel route.
func Lookup(path string) (Key, bool) {
	for _, o := range overrides {
		if o.path == path {
			return o.key, true
		}
	}
	rest, ok := strings.CutPrefix(path, DashboardRoot+"/")
	if !ok {
		return Key{}, false
	}
	c, a, ok := strings.Cut(rest, "/")
	if !ok || c == "" || a == "" || strings.Contains(a, "/") || Resolve(c, a) != path {
		return Key{}, false
	}
	return Key{Controller: c, Action: a}, true
}

// Overrides returns a copy of the override table.
func Overrides() map[Key]string {
	out := make(map[Key]string, len(overrides))
	for _, o := range overrides {
		out[o.key] = o.path
	}
	return out
}
