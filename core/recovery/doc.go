// Package recovery turns the free-text reply of a language model into an
// ordered, validated list of records. Models rarely return clean JSON: the
// array arrives wrapped in prose or markdown fences, with missing commas
// between objects, with trailing commas, or cut off mid-object when the
// output-length limit is hit.
//
// The pipeline runs a fixed sequence of pure stages:
//
//  1. [Normalize] isolates the candidate array region of the reply.
//  2. [ParseStrict] parses it with the standard JSON grammar, no repairs.
//  3. [Repair] applies three idempotent textual rewrites and parses once more.
//  4. [RecoverTruncation] drops an incomplete trailing element, closes the
//     open delimiters and parses a final time.
//  5. [Validate] maps every element onto a [Schema], stopping at the first
//     defect.
//
// [Recover] composes the stages into a single deterministic function of the
// reply and returns an [Outcome]. [Pipeline] adds observability and an
// opt-in [Sink] that persists the best-effort reconstruction of replies that
// could not be recovered.
package recovery
