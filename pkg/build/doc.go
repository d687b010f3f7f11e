// Package build compiles validated criteria into the generated artifacts.
//
// A build run:
//
//	taxonomy.json ──┐
//	                ├─▶ validate ─▶ Aggregate ─▶ Render ─▶ manifest check ─▶ write
//	criteria/*.json ┘
//
// produces three artifact kinds:
//
//   - the master index (_master-list.json): every criterion keyed by id, with
//     sorted categories and tags and the resolved categories_info
//   - one view per taxonomy category (categories/<key>.json), empty when no
//     criterion belongs to it
//   - the statistics summary (stats.json): totals, per-category counts and
//     the highest id
//
// Aggregate and Render are pure: the same records and taxonomy always produce
// the same bytes. Builder adds the I/O around them. Nothing is written until
// every record has passed validation and every previous artifact matches the
// checksum recorded in the manifest (.generated.json), so a failed run leaves
// the previous artifacts untouched.
package build
