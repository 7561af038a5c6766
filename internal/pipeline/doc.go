// Package pipeline provides a framework for executing page-processing
// steps in sequence.
//
// Each HTML page flows through the stages: parse, cache check, DOM
// transforms, asset audit, and atomic write-back. Each stage is implemented
// as a Step that receives the current Page and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for large sites
// 4. Steps compose differently per command (dry runs drop the write step)
//
// The pipeline supports both individual pages and batch processing with
// concurrency control using errgroup.
package pipeline
