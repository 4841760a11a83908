// Package client holds the building blocks of the HTTP execution core.
//
// It is organized into:
//   - Options: request options keyed by purpose, with a one-level-deep merge
//   - Defaults: the baseline options merged into every request
//   - Chain: an ordered middleware list composed around a base handler
//   - Transport: the pluggable object that performs the exchange
//   - Response: status, headers and a buffered, rewindable body
//   - Error: transport, file resolution and configuration failures
//
// Composition:
//
//	var chain client.Chain
//	chain.Add(a)
//	chain.Add(b)
//	h := chain.Build(transport.Send, client.DefaultOptions())
//	// a sees the request first and the response last
//
// Example Usage:
//
//	client.SetDefaultOptions(client.Options{
//	    client.KeyTransport: client.Options{client.KeyIPResolve: client.IPResolveV4},
//	})
//	opts := client.Merge(client.DefaultOptions(), client.Options{client.KeyQuery: q})
package client
