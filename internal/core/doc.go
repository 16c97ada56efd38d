// Package core holds the data sweeper's domain logic, independent of the web
// and CLI layers.
//
// # Pipeline
//
// Each uploaded file goes through a strictly linear sequence:
//
//	ingest -> clean -> project -> visualize -> export
//
// [Pipeline.Run] is a pure function of the uploaded bytes and a [FileState].
// Every interaction re-runs it from the top; nothing about a file's table is
// kept between runs except the state that produced it.
//
//   - Ingest: [DetectFormat] picks CSV or Excel from the extension and the
//     format's parser builds a [Table] (gota dataframe underneath). Other
//     extensions yield an [*UnsupportedFormatError].
//   - Clean: the recorded [CleanAction] log is replayed in order.
//     [Deduplicate] keeps first occurrences; [ImputeMean] fills numeric gaps
//     with the column mean.
//   - Project: [Table.Project] keeps the selected columns in selection order.
//   - Visualize: [Visualize] pairs the first two numeric columns, or reports
//     [ErrInsufficientColumnsForChart].
//   - Export: [Export] serializes to CSV or a single-sheet workbook without
//     touching the table.
//
// # Sessions
//
// [Service] keeps uploaded files and their [FileState] in an in-memory
// [SessionStore]. Runs within a session are serialized; runs across sessions
// are bounded by a [RunLimiter].
//
// # Errors
//
// [MapError] turns technical errors into a [UserMessage] with a support code
// (FILE, CHART, COL, CLN, CNV, SES, RUN, RATE).
package core
