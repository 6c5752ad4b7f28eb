// Package gharchive resolves shard references (GH Archive hour URLs or local
// files) into streams of newline-delimited event records.
//
// Design choices:
//   - Stream with bufio.Scanner but with a 32MB line cap to reliably handle
//     events carrying huge commit batches.
//   - Gzip is detected by magic bytes, so local mirrors of already
//     decompressed .json shards read through the same path.
//   - The storage backend answers a missing hour with a NoSuchKey error
//     document instead of a 404; such shards legitimately have no content
//     and yield zero lines.
//   - Malformed JSON lines are skipped and counted, never fatal to the shard.
package gharchive
