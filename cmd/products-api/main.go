// Package main is the entry point for the products API server.
//
// @title                      Products API
// @version                    1.0
// @description                CRUD and query operations over a product catalogue, guarded by a static API key.
// @BasePath                   /
// @securityDefinitions.apikey ApiKeyAuth
// @in                         header
// @name                       X-API-Key
package main

import "github.com/tbourn/go-products-api/cmd/products-api/cmd"

func main() {
	cmd.Execute()
}
