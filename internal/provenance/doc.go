// Package provenance provides the data model for mapping provenance payloads.
//
// This package contains the dictionary-compressed event log and nothing that
// evaluates it. All other internal packages import provenance; provenance
// imports nothing internal.
//
// Key design constraints:
//   - Every table has its own index type (DescriptorIndex, ActionIndex, ...),
//     so an action index can never be used to look up a stage.
//   - NoIndex (-1) marks an absent reference. Lookups never panic: an absent,
//     negative or out-of-range index resolves to an invalid Label.
//   - Placeholders ("-") are chosen by the presentation layer through
//     Label.Or, never stored in the model.
//   - A Payload is immutable once decoded. A new dataset replaces the whole
//     Payload.
//   - Event order is array order. Seq is carried for display only.
//
// Resolving an index and then searching the table for the resolved string is
// not an inverse operation: the generator deduplicates values, but a payload
// assembled by other tools may repeat a string under several indices.
package provenance
