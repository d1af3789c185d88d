package views

import (
	"zupos_panel/internal/auth"
	"zupos_panel/internal/menu"
	"zupos_panel/internal/routes"
	"zupos_panel/internal/session"
	"zupos_panel/internal/table"
	"zupos_panel/internal/warehouses"
)

// AppName heads the sidebar and page titles.
const AppName = "ZuPOS"

// Sidebar is the navigation drawer, rendered inside the shell and on its
// own by the /menu fragment.
type Sidebar struct {
	Loading     bool
	Groups      []menu.Group
	CurrentPath string
}

// NewSidebar lays out v for rendering.
func NewSidebar(v menu.View) Sidebar {
	return Sidebar{
		Loading:     v.Loading(),
		Groups:      v.Groups(),
		CurrentPath: v.CurrentPath,
	}
}

// Shell is the chrome around every authenticated page.
type Shell struct {
	Title   string
	AppName string
	User    session.User
	Sidebar Sidebar
	Crumbs  []menu.Crumb
	Flash   string
}

// NewShell builds the chrome for the signed-in user from a resolver
// snapshot.
func NewShell(title string, user session.User, v menu.View) Shell {
	return Shell{
		Title:   title,
		AppName: AppName,
		User:    user,
		Sidebar: NewSidebar(v),
		Crumbs:  v.Trail(routes.DashboardRoot),
	}
}

// LoginPage is the sign-in form. The password is never echoed back.
type LoginPage struct {
	Title    string
	AppName  string
	Username string
	BranchNo string
	Redirect string
	Errors   auth.FieldErrors
	Error    string
}

// FieldError returns the inline message for field, if any.
func (p LoginPage) FieldError(field string) string {
	if e, ok := p.Errors[field]; ok {
		return e.Message
	}
	return ""
}

// DashboardPage is the landing page after sign-in.
type DashboardPage struct {
	Shell
	Cards []warehouses.StatCard
}

// WarehouseForm holds the values of the "Yeni Depo Ekle" modal.
type WarehouseForm struct {
	Name         string
	Code         string
	TransferType string
	Error        string
}

// WarehousePage is the depot definitions screen.
type WarehousePage struct {
	Shell
	Cards      []warehouses.StatCard
	Table      table.View
	ModalOpen  bool
	Form       WarehouseForm
	ActionPath string
}

// PlaceholderPage stands in for screens that exist in the menu but have no
// implementation here.
type PlaceholderPage struct {
	Shell
	Heading string
	Path    string
	// Target is the web panel controller/action the path stands for.
	Target string
}
