// Package calibration corrects known spelling and alias drift in teacher
// names coming out of the Metabase dataset. The operations team fills the
// administration sheets by hand, so the same person shows up under several
// spellings; the roster only knows the canonical one.
package calibration

import "strings"

// names maps a normalized observed spelling to the canonical roster name.
// Keys are lower-cased with collapsed whitespace; values are verbatim.
//
// Extend this table when a new misspelling shows up in the unmatched
// report — do not edit the roster to match the sheet.
var names = map[string]string{
	"m. rizky pratama":     "Muhammad Rizky Pratama",
	"muh rizky pratama":    "Muhammad Rizky Pratama",
	"sri wahyuni s.pd":     "Sri Wahyuni",
	"sri wahyuni, s.pd.":   "Sri Wahyuni",
	"andi nur fadhillah":   "Andi Nur Fadillah",
	"dwi lestari ningsih":  "Dwi Lestariningsih",
	"yoga adi p":           "Yoga Adi Prasetyo",
	"bu ratna":             "Ratna Kusumawati",
	"pak hendra":           "Hendra Gunawan",
	"st. aminah":           "Siti Aminah",
	"siti aminah, m.pd":    "Siti Aminah",
	"agus salim se":        "Agus Salim",
	"nurul hidayati s.si.": "Nurul Hidayati",
}

// Apply returns the canonical spelling for an observed teacher name, or the
// input unchanged when no mapping exists. Pure and total: never fails, never
// drops a name.
func Apply(name string) string {
	if canonical, ok := names[normalize(name)]; ok {
		return canonical
	}
	return name
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
