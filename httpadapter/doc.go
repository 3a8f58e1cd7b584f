// Package httpadapter executes library-neutral HTTP requests on net/http.
//
// An Adapter owns the settings applied to every call it makes: connect,
// read and write timeouts, redirect policy, an optional HTTP or SOCKS5
// proxy, a cookie store, a Basic challenge responder and a set of default
// headers. Settings may be changed between calls from any goroutine; a call
// sees the settings in effect when it starts.
//
// # Basic Usage
//
//	a, err := httpadapter.New(httpadapter.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	a.SetDefaultHeader("Accept", "application/json")
//
//	resp, err := a.Execute(ctx, &httpadapter.Request{
//	    Method: http.MethodGet,
//	    URL:    "https://api.example.com/users/123",
//	})
//	if err != nil {
//	    return err // *NetworkError for non-2xx, *IOError for transport failures
//	}
//	defer resp.Close()
//
// # Errors
//
// Any status outside 200-299 is returned as a *NetworkError and the
// response body is discarded. Connection, timeout and mid-stream failures
// are returned as *IOError. Invalid settings are rejected with
// *ConfigurationError. ToAppError maps all three onto errors.AppError.
package httpadapter
