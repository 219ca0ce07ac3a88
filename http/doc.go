// Package http is a thin typed REST client over go-resty.
//
// It provides:
//   - A Client that lazily builds and caches one transport handle per
//     execution mode (sync and async) and drops both on Reset
//   - Verb methods (Get, Post, Put, Patch, Delete, Head) and their
//     future-returning Async counterparts, all sharing one dispatch path
//   - A Response envelope with status classification, strict and
//     tolerant JSON accessors, JSONPath/jq lookups and base64/gzip codecs
//   - Ping and GetData helpers built on Get
//
// Basic Usage:
//
//	client := http.NewClient(http.Options{
//	    BaseURL: "https://api.example.com",
//	    Headers: map[string]string{"Authorization": "Bearer token"},
//	})
//
//	res, err := client.Get(ctx, "/users", http.WithQuery("limit", "10"))
//	if err != nil {
//	    log.Fatal(err) // transport errors are returned unchanged
//	}
//	resp := res.(*http.Response)
//	fmt.Println(resp.StatusCode(), resp.IsSuccess())
//
// Async Calls:
//
//	users := client.AsyncGet(ctx, "/users")
//	teams := client.AsyncGet(ctx, "/teams")
//	u, err := users.Wait()
//	t, err := teams.Wait()
//
// Configuration:
//
// Handles are built from config.ClientConfig values, normally resolved from
// HTTPX_* environment keys through a Factory:
//
//	factory, err := http.NewFactoryFromSource(config.EnvSource())
//	client := http.NewClient(http.Options{BaseURL: base, Factory: factory})
//
// Thread Safety:
//
// Client is safe for concurrent use. A Reset while requests are in flight
// lets those requests finish on the handle they started with.
package http
