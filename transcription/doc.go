// Package transcription defines the provider interface and common types
// for interacting with speech-to-text backends.
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//   - transcription/whispercpp: whisper.cpp CLI via the process package
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory("whisper", whisper.Factory())
//	p, err := reg.Create("whisper", map[string]any{"url": url})
//	result, err := p.Transcribe(ctx, req)
package transcription
