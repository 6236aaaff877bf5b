// Package server exposes the remote OAuth apps over HTTP.
//
// Routes, with {provider} being a registered provider name:
//
//	GET  /login/{provider}     redirect to the provider's authorize URL
//	GET  /callback/{provider}  complete the handshake, open a session, verify the login
//	GET  /user/{provider}      verify the login of the current session
//	POST /fork/{provider}      fork ?repoowner=&reponame= into the session user's account
//	POST /logout/{provider}    end the session
//	GET  /providers            list registered providers
//	GET  /healthz              liveness
//	GET  /metrics              Prometheus metrics
//
// Sessions live in a storage.Store; the cookie carries only a random session ID.
// Errors are JSON objects with "error" and "error_description" keys.
//
// Example usage:
//
//	registry, _ := oauthapp.NewRegistryFromConfig(logger, cfg.ProviderConfigs())
//	store := memory.New(encryptor, logger)
//
//	srv := server.New(registry, store, server.Config{BaseURL: "https://app.example.com"},
//		server.WithLogger(logger))
//	_ = srv.ListenAndServe(ctx, ":8080", 10*time.Second)
package server
