package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/manufactura-api/pkg/jwt"
)

const secret = "secreto-de-prueba"

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := jwt.Generate(secret, "operario-1", jwt.RoleAlmacen, "manufactura-api", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse(secret, "manufactura-api", tok)
	require.NoError(t, err)
	assert.Equal(t, "operario-1", userID)
	assert.Equal(t, jwt.RoleAlmacen, role)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := jwt.Generate(secret, "operario-1", jwt.RoleAdmin, "otro-emisor", 5)
	require.NoError(t, err)

	_, _, err = jwt.Parse("otro-secreto", "", tok)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	_, _, err = jwt.Parse(secret, "manufactura-api", tok)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	expired, err := jwt.Generate(secret, "operario-1", jwt.RoleAdmin, "", -1)
	require.NoError(t, err)
	_, _, err = jwt.Parse(secret, "", expired)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u", jwt.RoleAdmin, "", 5)
	assert.Error(t, err)
}
