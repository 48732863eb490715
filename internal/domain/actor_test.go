package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeActor(t *testing.T, body string) (*CreateActorRequest, error) {
	t.Helper()
	var req CreateActorRequest
	err := json.Unmarshal([]byte(body), &req)
	return &req, err
}

func TestIntegerRejectsNonIntegers(t *testing.T) {
	for _, body := range []string{`{"age": "30"}`, `{"age": 30.0}`, `{"age": 3e1}`, `{"age": true}`, `{"age": 99999999999999999999}`} {
		_, err := decodeActor(t, body)
		assert.ErrorIs(t, err, ErrNotInteger, body)
	}

	req, err := decodeActor(t, `{"age": -4}`)
	require.NoError(t, err)
	assert.Equal(t, Integer(-4), *req.Age)
}

func TestCreateActorRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"valid", `{"name":"Tom Hanks","age":64,"gender":"male"}`, nil},
		{"gender optional", `{"name":"Tom Hanks","age":64}`, nil},
		{"empty name allowed", `{"name":"","age":0}`, nil},
		{"missing name", `{"age":64}`, ErrMissingFields},
		{"missing age", `{"name":"Tom Hanks"}`, ErrMissingFields},
		{"null age", `{"name":"Tom Hanks","age":null}`, ErrMissingFields},
		{"negative age", `{"name":"Tom Hanks","age":-1}`, ErrInvalidFields},
		{"name too long", `{"name":"` + strings.Repeat("a", 201) + `","age":1}`, ErrInvalidFields},
		{"gender too long", `{"name":"a","age":1,"gender":"` + strings.Repeat("g", 101) + `"}`, ErrInvalidFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := decodeActor(t, tt.body)
			require.NoError(t, err)

			err = req.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateActorRequest_Actor(t *testing.T) {
	req, err := decodeActor(t, `{"name":"Meryl Streep","age":71}`)
	require.NoError(t, err)
	require.NoError(t, req.Validate())

	actor := req.Actor()
	assert.Equal(t, "Meryl Streep", actor.Name)
	assert.Equal(t, 71, actor.Age)
	assert.Nil(t, actor.Gender)
}

func TestUpdateActorRequest(t *testing.T) {
	var empty UpdateActorRequest
	require.NoError(t, json.Unmarshal([]byte(`{"unknown": 1}`), &empty))
	assert.ErrorIs(t, empty.Validate(), ErrNoFields)

	var negative UpdateActorRequest
	require.NoError(t, json.Unmarshal([]byte(`{"age": -2}`), &negative))
	assert.ErrorIs(t, negative.Validate(), ErrInvalidFields)

	var req UpdateActorRequest
	require.NoError(t, json.Unmarshal([]byte(`{"age": 40, "gender": ""}`), &req))
	require.NoError(t, req.Validate())

	patch := req.Patch()
	assert.Nil(t, patch.Name)
	require.NotNil(t, patch.Age)
	assert.Equal(t, 40, *patch.Age)
	require.NotNil(t, patch.Gender)
	assert.Equal(t, "", *patch.Gender)
	assert.Equal(t, []string{"age", "gender"}, patch.Fields())
}

func TestActorJSON(t *testing.T) {
	b, err := json.Marshal(Actor{ID: 3, Name: "Keanu Reeves", Age: 56})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"name":"Keanu Reeves","age":56,"gender":null}`, string(b))
}
