// Package migrations contiene el esquema versionado (goose) embebido en el binario.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
