package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"saveeat/internal/services"
)

func TestFollowHandlers(t *testing.T) {
	svc := new(MockFollowService)
	me, other := uuid.New(), uuid.New()
	e := echo.New()
	NewFollowHandlers(svc).Register(e.Group("/v1", asUser(me)))

	svc.On("Follow", mock.Anything, me, other).Return(nil).Twice()
	svc.On("Unfollow", mock.Anything, me, other).Return(nil).Once()
	svc.On("Follow", mock.Anything, me, me).Return(&services.ValidationError{Field: "userId", Message: "cannot follow yourself"}).Once()
	svc.On("Following", mock.Anything, me).Return([]uuid.UUID{other}, nil).Once()
	svc.On("Followers", mock.Anything, other).Return([]uuid.UUID{}, nil).Once()

	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodPost, "/v1/follows/"+other.String(), "").Code)
	// following twice is accepted
	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodPost, "/v1/follows/"+other.String(), "").Code)
	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodDelete, "/v1/follows/"+other.String(), "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(e, http.MethodPost, "/v1/follows/"+me.String(), "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(e, http.MethodPost, "/v1/follows/nope", "").Code)

	rec := doRequest(e, http.MethodGet, "/v1/follows/following?userId="+me.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userIds":["`+other.String()+`"]}`, rec.Body.String())

	rec = doRequest(e, http.MethodGet, "/v1/follows/followers?userId="+other.String(), "")
	assert.JSONEq(t, `{"userIds":[]}`, rec.Body.String())

	rec = doRequest(e, http.MethodGet, "/v1/follows/followers", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertExpectations(t)
}
