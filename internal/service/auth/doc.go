// Package auth validates API callers: HS256 JWTs issued by cmd/token-generator
// and static tokens whose bcrypt hash is produced by cmd/hash-generator.
package auth
