// Package duet provides a unified client for multimodal LLM backends.
//
// The duet library abstracts away backend-specific APIs, allowing you to
// write code once and route requests to either a cloud Gemini model or a
// locally hosted Ollama server with minimal changes.
//
// # Core Interfaces
//
// The library defines two backend contracts:
//
//   - [Backend]: text and text+image generation against a named model
//   - [AudioBackend]: backends that additionally accept inlined audio
//
// Only the cloud backend implements [AudioBackend]; the capability gap is
// expressed in the type system rather than discovered at request time.
//
// Use the [github.com/spetersoncode/duet/session] package as the entry
// point. A session holds the active backend and model, performs local
// model auto-selection, and exposes the uniform operation set.
//
// # Basic Usage
//
// Create a cloud session and chat:
//
//	s, err := session.New(ctx, session.Config{
//	    APIKey: os.Getenv("GEMINI_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reply, err := s.Chat(ctx, "What is the capital of France?")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(reply)
//
// Or a local session against an Ollama server:
//
//	s, err := session.New(ctx, session.Config{
//	    UseLocal: true,
//	    Model:    "llama3.2",
//	    Endpoint: "http://localhost:11434",
//	})
//
// # Structured Extraction
//
// Sessions can extract a structured problem description from screenshots
// and generate solutions for it:
//
//	info, err := s.ExtractFromImages(ctx, []string{"shot1.png", "shot2.png"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sol, err := s.GenerateSolution(ctx, info)
//
// # Error Handling
//
// Operations fail with typed errors: [ConfigurationError],
// [UpstreamError], [UnsupportedOperationError], and
// [MalformedResponseError], plus [MediaError] when reading or encoding
// a local media file fails. Use the Is* predicates to classify:
//
//	if duet.IsUnsupported(err) {
//	    // e.g. audio requested while the local backend is active
//	}
package duet
