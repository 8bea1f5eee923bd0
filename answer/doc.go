// Package answer turns semantic search results into a generated answer.
//
// BuildContext renders retrieved logs in a fixed template, BuildPrompt wraps
// that block between an instructional preamble and the user's question, and
// Generator sends the prompt to an ai.Generator in one call.
package answer
