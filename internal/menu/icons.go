package menu

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type iconRule struct {
	keywords []string
	icon     string
}

// Order matters: the first rule with a matching keyword wins.
var mainIconRules = []iconRule{
	{[]string{"stok", "stock"}, "inventory"},
	{[]string{"satış", "satis", "sales"}, "point_of_sale"},
	{[]string{"sistem", "system"}, "settings"},
	{[]string{"hareket", "movement"}, "swap_horiz"},
	{[]string{"personel", "personnel"}, "badge"},
	{[]string{"rapor", "report"}, "assessment"},
	{[]string{"dönem", "donem", "period"}, "date_range"},
}

var subIconRules = []iconRule{
	{[]string{"depo", "warehouse"}, "warehouse"},
	{[]string{"fatura", "invoice"}, "receipt"},
	{[]string{"rapor", "report"}, "trending_up"},
	{[]string{"personel", "personnel"}, "person"},
}

const (
	defaultMainIcon = "category"
	defaultSubIcon  = "description"
)

// MainIcon picks the icon of a top-level group from its display name.
func MainIcon(name string) string {
	return matchIcon(name, mainIconRules, defaultMainIcon)
}

// SubIcon picks the icon of a sub-item from its display name.
func SubIcon(name string) string {
	return matchIcon(name, subIconRules, defaultSubIcon)
}

func matchIcon(name string, rules []iconRule, fallback string) string {
	// Casers keep state, so one is built per call.
	lower := cases.Lower(language.Turkish)
	normalized := foldName(lower, name)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, foldName(lower, kw)) {
				return rule.icon
			}
		}
	}
	return fallback
}

// foldName makes ASCII I and Turkish İ/ı match the same keywords.
func foldName(lower cases.Caser, s string) string {
	return strings.ReplaceAll(lower.String(s), "ı", "i")
}
