package commons

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponseEnvelope(t *testing.T) {
	raw, err := json.Marshal(ErrorResponse[struct{}]("validation failed", "amount must be greater than zero").WithRequestID("req-1"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":false,"message":"validation failed","errors":["amount must be greater than zero"],"requestId":"req-1"}`, string(raw))
}

func TestSuccessResponseOmitsErrors(t *testing.T) {
	raw, err := json.Marshal(SuccessResponse("ok", []string{}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":true,"message":"ok","data":[]}`, string(raw))
}
