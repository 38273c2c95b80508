package genmsg

import (
	"strings"

	"github.com/openlms/genmsg/internal/pofile"
)

// CleanCatalog rewrites the catalog at path with its noisy metadata removed:
//
//   - the header's fuzzy flag is cleared (the merge tool marks freshly merged
//     metadata fuzzy, which is harmless and not a translation-quality issue);
//
//   - source references lose their line numbers, which churn on every code
//     edit and only add diff noise;
//
//   - flags ending in "-format" are dropped; catalog tools add them
//     inconsistently across platforms and nothing downstream needs them.
//
// Entry-level fuzzy flags and all other metadata are preserved.
func CleanCatalog(path string) error {
	catalog, err := pofile.ParseFile(path)
	if err != nil {
		return err
	}

	if header := catalog.Header(); header != nil {
		header.RemoveFlag("fuzzy")
	}
	for _, entry := range catalog.Messages() {
		for i := range entry.References {
			entry.References[i].Line = 0
		}
		kept := entry.Flags[:0]
		for _, flag := range entry.Flags {
			if !strings.HasSuffix(flag, "-format") {
				kept = append(kept, flag)
			}
		}
		if len(kept) == 0 {
			entry.Flags = nil
		} else {
			entry.Flags = kept
		}
	}

	return catalog.SaveFile(path)
}
