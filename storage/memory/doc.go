// Package memory provides an in-memory implementation of the storage interfaces
// backed by github.com/patrickmn/go-cache. It is suitable for single-instance
// deployments; state is lost on restart.
//
// Tokens are sealed with a security.Encryptor before they are cached:
//
//	key, _ := security.KeyFromBase64(os.Getenv("OAUTHAPP_SERVER_ENCRYPTION_KEY"))
//	enc, _ := security.NewEncryptor(key)
//	store := memory.New(enc, logger)
package memory
