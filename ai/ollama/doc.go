// Package ollama implements ai.AIProvider against the native Ollama API.
//
// Hosts are given without the /v1 suffix; Config.Normalize strips it when
// the provider is "ollama".
package ollama
