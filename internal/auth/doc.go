// Package auth provides account registration, login and session tokens for
// HomeHub Core.
//
// It is built from four pieces:
//   - PasswordHasher: Argon2id with PHC-encoded output and a bounded number
//     of concurrent derivations
//   - TokenService: signed, expiring JWTs for one scope; access and refresh
//     each get their own instance and their own key pair
//   - UserRepository: SQLite account storage with a unique email index
//   - Manager: Register, Login, Refresh and Authenticate on top of the above
//
// Tokens are stateless. A refresh token stays valid until it expires even
// after it has been exchanged.
//
// Every credential failure visible outside the package wraps
// ErrInvalidCredentials, with the specific cause kept in the chain for logs.
package auth
