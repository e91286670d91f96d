// Package gateway provides an HTTP client for the remote extensions store.
//
// # Overview
//
// The store exposes a single REST collection. The client performs the three
// operations the rest of extman needs and nothing else:
//
//	GET    /extensions        -> []Extension
//	PATCH  /extensions/{id}   {"isActive": bool} -> Extension
//	DELETE /extensions/{id}   -> no body
//
// The collection segment is configurable (WithResource) so the client can
// talk to JSON-server style stores that mount the data elsewhere.
//
// # Architecture
//
//   - client.go: Client, options, request execution
//   - types.go: Extension and the tolerant ID type
//   - error.go: the uniform Error type and its Kind
//
// # Error Handling
//
// Every failure is returned as *Error. Kind tells callers whether the request
// never produced a usable response (KindTransport: connection refused,
// timeout, undecodable body) or the store refused it (KindRejected: status
// 400 and above). Callers use IsTransport and IsRejected, or errors.As for
// the status code.
//
// The client never retries and never hides a failure. Deciding what a
// failed list means for the UI is the controller's job.
//
// # Usage Example
//
//	client, err := gateway.NewClient("http://127.0.0.1:3000",
//		gateway.WithResource("extensions"),
//		gateway.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	items, err := client.FetchAll(ctx)
//
// # Testing Considerations
//
// Remote is the interface the controller consumes; tests substitute a fake
// and exercise *Client itself against httptest servers.
package gateway
