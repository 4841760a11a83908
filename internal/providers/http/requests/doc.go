// Package requests provides the request executor.
//
// Every call goes through the same pipeline:
//   - the method is upper-cased
//   - the call options are merged onto the baseline
//   - a "Client Request:" debug event is logged
//   - the middleware chain is composed around the transport and invoked
//   - an "API response:" debug event is logged with status, headers and body
//   - the body is rewound so the caller reads it from the first byte
//
// Example Usage:
//
//	exec := requests.New()
//	exec.Use(middleware.UserAgent("my-app/1.0"))
//	resp, err := exec.Get(ctx, "https://api.example.com/users", map[string]string{"page": "2"})
package requests
