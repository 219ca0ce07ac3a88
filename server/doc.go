// Package server builds gin applications with the usual lazyapi defaults
// and provides token validators for protecting routes.
//
// Usage:
//
//	app := server.NewApp("billing", cfg)
//	app.POST("/download", server.HeaderValidator(secret, "apikey"), download)
//	app.Run(":8080")
//
// A validator that rejects a request aborts it with 401, a
// {"detail":"Invalid authentication credentials"} body and a
// WWW-Authenticate: Bearer header. Accepted requests carry
// ContextKeyAuthorized=true for later handlers.
package server
