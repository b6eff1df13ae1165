// @title           Dragon storefront API
// @version         1.0
// @description     REST mirror of the Dragon GraphQL API. Catalog, orders and accounts.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"os"

	"github.com/pabloleguizamon/dragon-challenge/internal/cli"

	_ "github.com/pabloleguizamon/dragon-challenge/docs"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
