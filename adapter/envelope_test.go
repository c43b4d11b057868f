package adapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpstream struct {
	status  int
	payload any
}

func (s stubUpstream) Status() int  { return s.status }
func (s stubUpstream) Payload() any { return s.payload }

func TestSuccess(t *testing.T) {
	t.Run("carries result from payload", func(t *testing.T) {
		resp := stubUpstream{status: http.StatusOK, payload: map[string]any{"result": 123.45, "price": 123.45}}

		env := Success("job-1", resp)

		assert.Equal(t, "job-1", env.JobRunID)
		assert.Equal(t, 123.45, env.Result)
		assert.Equal(t, http.StatusOK, env.StatusCode)
		assert.Equal(t, 123.45, env.Data["price"])
	})

	t.Run("missing result becomes explicit null", func(t *testing.T) {
		payload := map[string]any{"price": 1.0}
		env := Success("job-2", stubUpstream{status: http.StatusOK, payload: payload})

		assert.Nil(t, env.Result)
		v, ok := env.Data["result"]
		assert.True(t, ok)
		assert.Nil(t, v)

		// upstream payload is untouched
		_, mutated := payload["result"]
		assert.False(t, mutated)

		raw, err := json.Marshal(env)
		require.NoError(t, err)
		assert.JSONEq(t, `{"jobRunID":"job-2","data":{"price":1,"result":null},"result":null,"statusCode":200}`, string(raw))
	})

	t.Run("non-object payload", func(t *testing.T) {
		env := Success("job-3", stubUpstream{status: http.StatusAccepted, payload: []any{1.0, 2.0}})

		assert.Equal(t, map[string]any{"result": nil}, env.Data)
		assert.Equal(t, http.StatusAccepted, env.StatusCode)
	})

	t.Run("missing status defaults to 200", func(t *testing.T) {
		env := Success("job-5", stubUpstream{payload: map[string]any{"result": 1.0}})
		assert.Equal(t, http.StatusOK, env.StatusCode)
	})

	t.Run("empty job run id defaults", func(t *testing.T) {
		env := Success("", stubUpstream{status: http.StatusOK})
		assert.Equal(t, DefaultJobRunID, env.JobRunID)
	})

	t.Run("byte identical on repeat", func(t *testing.T) {
		resp := stubUpstream{status: http.StatusOK, payload: map[string]any{"b": "x", "a": 2.0}}

		first, err := json.Marshal(Success("job-4", resp))
		require.NoError(t, err)
		second, err := json.Marshal(Success("job-4", resp))
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestErrored(t *testing.T) {
	t.Run("wire shape", func(t *testing.T) {
		env := Errored("job-9", MissingParameter("quote"))

		raw, err := json.Marshal(env)
		require.NoError(t, err)
		assert.JSONEq(t, `{"jobRunID":"job-9","status":"errored","error":"Required parameter not supplied: quote","statusCode":500}`, string(raw))
	})

	t.Run("defaults", func(t *testing.T) {
		env := Errored("", nil)
		assert.Equal(t, DefaultJobRunID, env.JobRunID)
		assert.Equal(t, MsgDefaultError, env.Error)
		assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
	})

	t.Run("foreign error message", func(t *testing.T) {
		env := Errored("7", errors.New("boom"))
		assert.Equal(t, "boom", env.Error)
		assert.Equal(t, StatusErrored, env.Status)
	})
}
