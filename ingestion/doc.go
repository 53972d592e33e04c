// Package ingestion turns extracted documents into bounded, summarized reports.
//
// The Pipeline type runs the workflow for one document:
//   - Evaluate the character count against the processing budget
//   - Return content that fits unchanged, marked as not summarized
//   - Otherwise split it with the Chunker and summarize every chunk concurrently
//   - Assemble an AggregateReport with before/after metrics, sections in chunk order
//
// Summarization failures never fail a run. Transient back-end errors are
// retried with backoff; exhausted or permanent failures fall back to
// truncation, then to the original chunk text, and the section is marked.
package ingestion
