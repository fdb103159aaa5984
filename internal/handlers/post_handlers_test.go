package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"saveeat/internal/models"
	"saveeat/internal/services"
	"saveeat/testhelpers"
)

type PostHandlersTestSuite struct {
	suite.Suite
	posts  *MockPostService
	media  *MockMediaService
	e      *echo.Echo
	userID uuid.UUID
}

func (suite *PostHandlersTestSuite) SetupTest() {
	suite.posts = new(MockPostService)
	suite.media = new(MockMediaService)
	suite.userID = uuid.New()

	suite.e = echo.New()
	v1 := suite.e.Group("/v1")
	// anonymous reads go through a separate prefix so both modes can be exercised
	NewPostHandlers(suite.posts, suite.media).Register(v1.Group("/anon"), v1.Group("/anon-protected"))
	NewPostHandlers(suite.posts, suite.media).Register(v1.Group("", asUser(suite.userID)), v1.Group("", asUser(suite.userID)))
}

func (suite *PostHandlersTestSuite) TearDownTest() {
	suite.posts.AssertExpectations(suite.T())
	suite.media.AssertExpectations(suite.T())
}

func TestPostHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(PostHandlersTestSuite))
}

func (suite *PostHandlersTestSuite) TestFeed_Anonymous() {
	posts := []*models.Post{testhelpers.NewPost(uuid.New(), "Curry")}
	suite.posts.On("Feed", mock.Anything, (*uuid.UUID)(nil)).Return(posts, nil).Once()

	rec := doRequest(suite.e, http.MethodGet, "/v1/anon/posts", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"title":"Curry"`)
}

func (suite *PostHandlersTestSuite) TestFeed_AuthenticatedViewer() {
	suite.posts.On("Feed", mock.Anything, &suite.userID).Return([]*models.Post{}, nil).Once()

	rec := doRequest(suite.e, http.MethodGet, "/v1/posts", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"posts":[]}`, rec.Body.String())
}

func (suite *PostHandlersTestSuite) TestGetPost_NotFound() {
	id := uuid.New()
	suite.posts.On("Get", mock.Anything, id, &suite.userID).Return(nil, services.ErrNotFound).Once()

	rec := doRequest(suite.e, http.MethodGet, "/v1/posts/"+id.String(), "")
	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *PostHandlersTestSuite) TestCreatePost() {
	post := testhelpers.NewPost(suite.userID, "Curry")
	suite.posts.On("Create", mock.Anything, suite.userID, mock.MatchedBy(func(in *services.PostInput) bool {
		return in.Title == "Curry" && len(in.Media) == 1 && in.Media[0].Type == models.MediaTypeImage
	})).Return(post, nil).Once()

	rec := doRequest(suite.e, http.MethodPost, "/v1/posts",
		`{"title":"Curry","media":[{"type":"image","url":"https://cdn.example.com/a.jpg"}]}`)
	suite.Equal(http.StatusCreated, rec.Code)
	suite.JSONEq(`{"id":"`+post.ID.String()+`"}`, rec.Body.String())
}

func (suite *PostHandlersTestSuite) TestCreatePost_WritesRequireAuth() {
	rec := doRequest(suite.e, http.MethodPost, "/v1/anon-protected/posts", `{"title":"Curry"}`)
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *PostHandlersTestSuite) TestUpdatePost_NoFields() {
	id := uuid.New()
	suite.posts.On("Update", mock.Anything, suite.userID, id, &models.PostUpdate{}).
		Return(&services.ValidationError{Field: "body", Message: "no_fields"}).Once()

	rec := doRequest(suite.e, http.MethodPatch, "/v1/posts/"+id.String(), `{}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "no_fields")
}

func (suite *PostHandlersTestSuite) TestDeletePost() {
	id := uuid.New()
	suite.posts.On("Delete", mock.Anything, suite.userID, id).Return(nil).Once()

	rec := doRequest(suite.e, http.MethodDelete, "/v1/posts/"+id.String(), "")
	suite.Equal(http.StatusNoContent, rec.Code)
}

func (suite *PostHandlersTestSuite) TestLikeAndUnlike() {
	id := uuid.New()
	suite.posts.On("Like", mock.Anything, suite.userID, id).Return(nil).Once()
	suite.posts.On("Unlike", mock.Anything, suite.userID, id).Return(nil).Once()

	suite.Equal(http.StatusOK, doRequest(suite.e, http.MethodPost, "/v1/posts/"+id.String()+"/like", "").Code)
	suite.Equal(http.StatusOK, doRequest(suite.e, http.MethodDelete, "/v1/posts/"+id.String()+"/like", "").Code)
}

func (suite *PostHandlersTestSuite) TestLike_MissingPost() {
	id := uuid.New()
	suite.posts.On("Like", mock.Anything, suite.userID, id).Return(services.ErrNotFound).Once()

	rec := doRequest(suite.e, http.MethodPost, "/v1/posts/"+id.String()+"/like", "")
	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *PostHandlersTestSuite) TestComments() {
	id := uuid.New()
	comment := &models.Comment{ID: uuid.New(), PostID: id, UserID: suite.userID, Body: "Looks great"}
	suite.posts.On("Comments", mock.Anything, id).Return([]*models.Comment{comment}, nil).Once()
	suite.posts.On("AddComment", mock.Anything, suite.userID, id, "Looks great").Return(comment, nil).Once()

	rec := doRequest(suite.e, http.MethodGet, "/v1/anon/posts/"+id.String()+"/comments", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "Looks great")

	rec = doRequest(suite.e, http.MethodPost, "/v1/posts/"+id.String()+"/comments", `{"text":"Looks great"}`)
	suite.Equal(http.StatusCreated, rec.Code)
}

func (suite *PostHandlersTestSuite) TestMyPostsAndLikes() {
	suite.posts.On("UserPosts", mock.Anything, suite.userID).Return([]*models.Post{}, nil).Once()
	suite.posts.On("LikedPosts", mock.Anything, suite.userID).Return([]*models.Post{}, nil).Once()

	suite.JSONEq(`{"posts":[]}`, doRequest(suite.e, http.MethodGet, "/v1/me/posts", "").Body.String())
	suite.JSONEq(`{"posts":[]}`, doRequest(suite.e, http.MethodGet, "/v1/me/likes", "").Body.String())
}

func (suite *PostHandlersTestSuite) TestUploadMedia() {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="dish.jpg"`)
	hdr.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(hdr)
	require.NoError(suite.T(), err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), w.Close())

	item := &models.MediaItem{Type: models.MediaTypeImage, URL: "https://cdn.example.com/posts/x.jpg", Key: "posts/x.jpg"}
	suite.media.On("Upload", mock.Anything, suite.userID, mock.MatchedBy(func(u *services.MediaUpload) bool {
		return u.Filename == "dish.jpg" && u.ContentType == "image/jpeg" && u.Size == int64(len("jpeg-bytes"))
	})).Return(item, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/v1/media", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)

	suite.Equal(http.StatusCreated, rec.Code)
	suite.Contains(rec.Body.String(), `"key":"posts/x.jpg"`)
}

func (suite *PostHandlersTestSuite) TestUploadMedia_MissingFile() {
	req := httptest.NewRequest(http.MethodPost, "/v1/media", nil)
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	suite.Equal(http.StatusBadRequest, rec.Code)
}
