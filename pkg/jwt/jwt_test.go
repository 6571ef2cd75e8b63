package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateParse_PortalLigadoAlCliente(t *testing.T) {
	in := jwt.Subject{UserID: "u-1", CustomerID: "c-1", Role: "customer"}
	tok, err := jwt.Generate(secret, "facturacion-test", time.Hour, in)
	require.NoError(t, err)

	got, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestGenerate_PortalSinCliente(t *testing.T) {
	_, err := jwt.Generate(secret, "", time.Hour, jwt.Subject{UserID: "u-1", Role: "customer"})
	assert.ErrorIs(t, err, jwt.ErrUnboundPortal)

	_, err = jwt.Generate(secret, "", time.Hour, jwt.Subject{UserID: "u-1"})
	assert.Error(t, err, "el rol es obligatorio")
}

func TestGenerate_AdminSinCliente(t *testing.T) {
	tok, err := jwt.Generate(secret, "", time.Hour, jwt.Subject{UserID: "u-1", Role: "admin"})
	require.NoError(t, err)
	got, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Empty(t, got.CustomerID)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := jwt.Generate(secret, "", time.Hour, jwt.Subject{UserID: "u-1", Role: "admin"})
	require.NoError(t, err)
	expired, err := jwt.Generate(secret, "", -time.Minute, jwt.Subject{UserID: "u-1", Role: "admin"})
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "firma con otro secreto")
	_, err = jwt.Parse(secret, expired)
	assert.Error(t, err, "token expirado")
	_, err = jwt.Parse("", tok)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
	_, err = jwt.Parse(secret, "no.es.un-jwt")
	assert.Error(t, err)
}
