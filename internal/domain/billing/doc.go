// Package billing provides the invoice lifecycle bounded context.
//
// Invoices move through a fixed state machine:
//
//	DRAFT -> SENT -> OVERDUE
//	           \       /
//	            -> PAID    (PAID may revert to SENT)
//
// Drafts are freely editable and carry no number. Sending assigns a
// per-owner sequential number, stamps the issue date and generates the
// public payment token. The invoice total is always derived from the
// line items, never stored.
//
// Key Aggregates:
//   - Invoice: lifecycle state, line items, payment details
//   - Client: billable customer, guarded against deletion while unpaid
//     invoices reference it
//
// Supporting types:
//   - MetricSnapshot: append-only audit capture of aggregate figures
//   - DashboardStats: live per-status counts and per-currency sums
package billing
