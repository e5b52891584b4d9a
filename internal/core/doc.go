// Package core provides the business logic for CSV import operations.
//
// This package is the heart of the importer, containing all domain logic
// independent of any transport layer. It can be used by web handlers, CLI
// tools, or tests without modification.
//
// # Pipeline
//
// An import run moves through four stages:
//
//  1. Parse: raw CSV bytes become typed records ([ParseRecords]). Header
//     aliasing maps real-world column names onto logical fields; malformed
//     cells become absent values, never parse failures.
//  2. Validate: every field rule runs per record, accumulating violations
//     ([ValidateCustomer], [ValidateOrder]).
//  3. Resolve: order records are matched against a point-in-time
//     [CustomerSnapshot] so references are checked against a consistent view.
//  4. Partition: records split into valid and invalid lists inside an
//     [ImportPreview]. Nothing is persisted in this path, so previews are
//     safe to rebuild repeatedly.
//
// Committing is a separate, explicit step ([Service.SaveCustomers],
// [Service.SaveOrders]). Each record is persisted in its own transaction so
// one rejected record never rolls back its siblings.
//
// # Sessions
//
// [Service.StartCustomerImport] and [Service.StartOrderImport] keep the
// preview in memory under a session ID, letting a caller inspect the preview
// and then commit exactly the records it saw. Sessions expire on a timer;
// abandoning one has no cleanup obligation because previews perform no
// writes.
//
// # Error tiers
//
//   - File-level problems (unreadable file, broken CSV) surface in
//     [ImportPreview].FileErrors and abort the run.
//   - Record-level problems accumulate in each record's Violations and never
//     stop the batch.
//   - Commit-level problems are reported per record in [SaveResult].Errors;
//     the loop continues unless the store itself becomes unavailable.
package core
