// Package proxy implements the shared request/response pipeline used by the
// typed clients that talk to the recorder service.
//
// The package has two layers:
//
//   - Request builder: NewRequest turns a method, a relative URL template
//     with positional {0}, {1}, ... placeholders and a list of arguments
//     into a Request. Helpers attach a JSON body or query parameters.
//   - Execution pipeline: Execute (fire-and-discard), the generic Execute[T]
//     (typed deserialization) and ExecuteResult[T] (unwraps the
//     {result, errorMessage} envelope) all share one send-and-classify
//     routine.
//
// # Error classification
//
// Every execution ends in exactly one outcome. HTTP 500 responses become a
// *ServerError carrying the detail message from the structured error body,
// other statuses >= 400 become a *HTTPStatusError carrying the reason
// phrase, and transport failures to reach the target (DNS, connect, proxy,
// TLS trust) become a *TargetUnreachableError carrying the innermost
// message. Anything else is logged once, handed to the event log, and
// surfaced as the generic ErrUnexpected. Once classified, an error is never
// re-wrapped or re-logged by an outer layer:
//
//	recordings, err := proxy.ExecuteResult[[]Recording](ctx, client, req)
//	if proxy.IsApplicationError(err) {
//		// message is safe to show to the user as-is
//	}
//
// # Transport
//
// Clients created for the same base address share one *http.Client for the
// process lifetime. The transport honors proxy settings from the
// environment and handles gzip transparently. The pipeline never retries;
// callers decide what to do with a classified failure, and layer timeouts
// or cancellation through the context.
package proxy
