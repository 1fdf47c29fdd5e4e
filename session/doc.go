// Package session is the entry point for duet: it holds the active
// backend selection and model identity, exposes the uniform operation
// set, and enforces capability gating.
//
// A session is created with either a Gemini API key or the local
// backend flag:
//
//	s, err := session.New(ctx, session.Config{APIKey: key})
//	s, err := session.New(ctx, session.Config{UseLocal: true})
//
// Local sessions auto-select their model in the background: if the
// configured model is not hosted by the server, the first listed model
// is adopted and confirmed with a throwaway generation. Auto-selection
// never fails session creation; wait on [Session.Ready] to observe it
// settle.
//
// Backend switches ([Session.SwitchToLocal], [Session.SwitchToCloud])
// are guarded by an internal mutex and atomic with respect to in-flight
// calls; operations dispatched concurrently with a switch use whichever
// backend was active when they resolved it.
//
// Audio description is cloud-only. With the local backend active,
// [Session.DescribeAudio] fails with a duet.UnsupportedOperationError
// before any network traffic, independent of the model name.
package session
