package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	dom "vidtube/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: email", dom.ErrValidation): http.StatusBadRequest,
		dom.ErrUnauthorized:                          http.StatusUnauthorized,
		dom.ErrInvalidToken:                          http.StatusUnauthorized,
		dom.ErrTokenStale:                            http.StatusUnauthorized,
		dom.ErrForbidden:                             http.StatusForbidden,
		dom.ErrUserNotFound:                          http.StatusNotFound,
		dom.ErrConflict:                              http.StatusConflict,
		dom.ErrUpload:                                http.StatusInternalServerError,
		errors.New("pg: connection refused"):         http.StatusInternalServerError,
	}
	for err, want := range cases {
		require.Equal(t, want, StatusOf(err), err.Error())
	}
}

func TestFail_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Fail(c, fmt.Errorf("%w: username taken", dom.ErrConflict))

	require.Equal(t, http.StatusConflict, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, float64(409), body["statusCode"])
	require.Equal(t, false, body["success"])
	require.Nil(t, body["data"])
	require.Contains(t, body, "errors")
	require.Len(t, c.Errors, 1)
}

func TestFail_HidesUnknownErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Fail(c, errors.New("dial tcp 10.0.0.1:5432: secret"))

	var body Failure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, genericMessage, body.Message)
	require.Equal(t, []string{genericMessage}, body.Errors)
}

func TestFail_HidesWrappedCauses(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{
			err: fmt.Errorf("%w: persist refresh token: %v", dom.ErrInternal,
				errors.New(`ERROR: relation "users" does not exist (SQLSTATE 42P01) host=db.internal:5432`)),
			want: dom.ErrInternal.Error(),
		},
		{
			err: fmt.Errorf("%w: avatar: %v", dom.ErrUpload,
				errors.New("operation error S3: PutObject, bucket vidtube-media, key avatar/2026/10/19/x.png")),
			want: dom.ErrUpload.Error(),
		},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Fail(c, tc.err)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotContains(t, w.Body.String(), "db.internal")
		require.NotContains(t, w.Body.String(), "vidtube-media")
		var body Failure
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, tc.want, body.Message)
		require.Equal(t, []string{tc.want}, body.Errors)
		require.Len(t, c.Errors, 1)
		require.ErrorIs(t, c.Errors[0].Err, tc.err)
	}
}

func TestOK_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	OK(c, http.StatusCreated, "created", gin.H{"id": 1})

	var body Success
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, http.StatusCreated, body.StatusCode)
	require.True(t, body.Success)
	require.Equal(t, "created", body.Message)
}
