// Package gqlapi serves the storefront GraphQL API.
package gqlapi

import (
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

//go:embed schema.graphql
var SDL string

// NewSchema parses the SDL against the root resolver. It panics when the
// resolver does not match the schema.
func NewSchema(svc service.Services, log *slog.Logger) *graphql.Schema {
	if log == nil {
		log = slog.Default()
	}
	return graphql.MustParseSchema(SDL, &Resolver{svc: svc, log: log},
		graphql.MaxDepth(12),
	)
}

// Handler serves POST requests carrying {query, operationName, variables}.
// The caller identity must already be on the request context.
func Handler(schema *graphql.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}
