// Package llm defines the LLM provider interface, common request/response
// types, and the Invoker adapter that gives the pipeline a uniform
// "prompt in, text out" call contract.
//
// # Backends
//
//   - llm/llamacpp: llama.cpp llama-server HTTP API
//   - llm/ollama: Ollama HTTP API
//
// # Usage
//
//	reg := llm.NewRegistry()
//	reg.RegisterFactory("ollama", ollama.Factory())
//	p, err := reg.Create("ollama", map[string]any{"base_url": url})
//	inv := llm.NewInvoker(p, llm.ModelConfig{Model: "llama3", MaxLength: 512})
//	text, err := inv.Call(ctx, prompt)
package llm
