// Package testutil provides test infrastructure for restadapter.
//
// Test components extend component.Component with Reset, Snapshot and
// Restore so state can be isolated between test cases:
//
//	func TestFetch(t *testing.T) {
//	    srv := testutil.T(t).Server(testutil.WithAccount("alice", "secret"))
//	    // srv is stopped when the test ends
//	    resp, err := adapter.Execute(ctx, &httpadapter.Request{URL: srv.URL() + "/echo"})
//	    ...
//	    last, _ := srv.LastRequest()
//	}
//
// Server is a gin-routed recording HTTP server with built-in routes
// (/echo, /status/:code, /redirect/:n, /cookies, /cookies/set, /delay/:ms,
// /basic-auth) and per-path stubs.
//
// The package also carries helpers for live-API tests: LoadCredentials
// reads a newline-separated credentials file, SkipIfRateLimited skips a
// test whose error carries a rate-limit constant, and UserAgent and
// RandomInt build identifiable request data.
package testutil
