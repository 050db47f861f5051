// Package mocks contiene mocks generados de los puertos del dominio.
// Regenerar con `go generate ./internal/mocks`.
package mocks

//go:generate mockgen -source=../domain/repository/document_store.go -destination=document_store_mock.go -package=mocks
