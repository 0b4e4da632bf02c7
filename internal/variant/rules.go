// Package variant infers recipe-graph edges for items whose relationship to a
// base item is purely lexical: charge state, lock state, wear state and the
// like. The game records no explicit recipe between such pairs, so the linker
// derives the edges from a rule table over name suffixes.
package variant

// Rule describes one lexical base/variant relationship. A rule fires for a
// base name ending in BaseSuffix: stripping the suffix and appending
// VariantSuffix yields the candidate variant name. Either suffix may be
// empty. Kind is a human-readable tag for logs and diagnostics.
type Rule struct {
	BaseSuffix    string
	VariantSuffix string
	Kind          string
}

// DefaultRules is the static rule table, applied in priority order. The
// ordering is meaningful and load-bearing: earlier rules win the right to
// synthesize a virtual recipe for a name.
func DefaultRules() []Rule {
	return []Rule{
		// Charged variants: "X (uncharged)" in the log -> "X" is the variant.
		{BaseSuffix: " (uncharged)", VariantSuffix: "", Kind: "charged"},

		// Wilderness weapons: "Webweaver bow (u)" -> "Webweaver bow".
		{BaseSuffix: " (u)", VariantSuffix: "", Kind: "charged"},

		// Toxic staff: "Toxic staff (uncharged)" -> "Toxic staff of the dead".
		{BaseSuffix: " (uncharged)", VariantSuffix: " of the dead", Kind: "charged_of_the_dead"},

		// Degradation: "Black mask (10)" -> "Black mask".
		{BaseSuffix: " (10)", VariantSuffix: "", Kind: "degraded"},

		// Locked variants: "X" -> "X (l)" / "X (locked)".
		{BaseSuffix: "", VariantSuffix: " (l)", Kind: "locked"},
		{BaseSuffix: "", VariantSuffix: " (locked)", Kind: "locked"},

		{BaseSuffix: "", VariantSuffix: " (broken)", Kind: "broken"},
		{BaseSuffix: "", VariantSuffix: " (damaged)", Kind: "damaged"},

		// Inactive in the log means the active form is the variant, and the
		// reverse holds for derived items.
		{BaseSuffix: " (inactive)", VariantSuffix: "", Kind: "active"},
		{BaseSuffix: "", VariantSuffix: " (inactive)", Kind: "inactive"},

		{BaseSuffix: " (empty)", VariantSuffix: "", Kind: "filled"},

		// Cosmetic silver variants: "X" -> "X (s)".
		{BaseSuffix: "", VariantSuffix: " (s)", Kind: "silver"},

		{BaseSuffix: " (disassembled)", VariantSuffix: "", Kind: "assembled"},

		// Barrows wear states use a bare space-number suffix, unlike the
		// parenthesized "(10)" degradation above.
		{BaseSuffix: "", VariantSuffix: " 0", Kind: "barrows_degraded"},
		{BaseSuffix: "", VariantSuffix: " 25", Kind: "barrows_degraded"},
		{BaseSuffix: "", VariantSuffix: " 50", Kind: "barrows_degraded"},
		{BaseSuffix: "", VariantSuffix: " 75", Kind: "barrows_degraded"},
		{BaseSuffix: "", VariantSuffix: " 100", Kind: "barrows_degraded"},
	}
}
