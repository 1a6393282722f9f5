// services/errors.go
package services

import "errors"

// Sentinel errors surfaced by the service layer; controllers map them to
// status codes.
var (
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrUsernameTaken      = errors.New("nome de usuário já existe")
	ErrRootUndeletable    = errors.New("não é possível excluir usuários root")
)
