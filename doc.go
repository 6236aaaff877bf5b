// Package oauthapp wraps an OAuth 2.0 provider's REST API for two user actions:
// verifying who logged in and forking a repository into the user's account.
//
// An App is built once per provider from a providers.ProviderConfig and shared
// through a Registry. Calls are signed with the access token carried in the
// request context:
//
//	registry := oauthapp.NewRegistry(logger)
//	app, err := registry.Register("github", github.DefaultConfig(clientID, clientSecret))
//	if err != nil {
//		return err
//	}
//
//	ctx = remote.WithToken(ctx, token)
//	user, err := app.VerifyLogin(ctx)
//	fork, err := app.CreateFork(ctx, "octocat", "Hello-World")
//
// Errors are one of *ConstructionError, *HTTPError, *ValidationError or
// *OperationError. HTTPStatus maps them to a response status.
package oauthapp
