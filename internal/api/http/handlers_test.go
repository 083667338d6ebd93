package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"urlmapper/internal/database"
	"urlmapper/internal/models"
	"urlmapper/internal/service"
	"urlmapper/pkg/response"
)

type MockURLService struct {
	mock.Mock
}

func (s *MockURLService) ShortenURL(ctx context.Context, targetURL string) (*models.URLMapping, error) {
	args := s.Called(ctx, targetURL)
	mapping, _ := args.Get(0).(*models.URLMapping)
	return mapping, args.Error(1)
}

func (s *MockURLService) ResolveURL(ctx context.Context, key string) (*models.URLMapping, error) {
	args := s.Called(ctx, key)
	mapping, _ := args.Get(0).(*models.URLMapping)
	return mapping, args.Error(1)
}

func (s *MockURLService) InspectURL(ctx context.Context, key string) (*models.URLMapping, error) {
	args := s.Called(ctx, key)
	mapping, _ := args.Get(0).(*models.URLMapping)
	return mapping, args.Error(1)
}

func (s *MockURLService) DeactivateURL(ctx context.Context, key string) (*models.URLMapping, error) {
	args := s.Called(ctx, key)
	mapping, _ := args.Get(0).(*models.URLMapping)
	return mapping, args.Error(1)
}

type HandlersTestSuite struct {
	suite.Suite
	logger     *httplog.Logger
	urlSvcMock *MockURLService
	server     *httptest.Server
	e          *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.urlSvcMock = new(MockURLService)
	router := NewRouter(suite.logger, suite.urlSvcMock, nil)
	suite.server = httptest.NewServer(router)
	suite.e = httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  suite.server.URL,
		Reporter: httpexpect.NewAssertReporter(suite.T()),
		Client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.urlSvcMock.AssertExpectations(suite.T())
	suite.server.Close()
}

func (suite *HandlersTestSuite) TestPing() {
	const path = "/api/v1/ping"

	suite.Run("success", func() {
		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("pong\n")
	})
}

func (suite *HandlersTestSuite) TestCreateURL() {
	const path = "/api/v1/urls"

	suite.Run("empty request body", func() {
		suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.EmptyRequestBodyResponse.Message)
	})

	suite.Run("invalid request body", func() {
		suite.e.POST(path).
			WithJSON("invalid body").
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.BadRequestResponse.Message)
	})

	suite.Run("validation error", func() {
		suite.e.POST(path).
			WithJSON(map[string]string{
				"target_url": "invalid url",
			}).
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			ContainsKey("message").
			ContainsKey("details")
	})

	suite.Run("key generation exhausted", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Times(1).
			Return(nil, service.ErrKeyGenerationExhausted)

		suite.e.POST(path).
			WithJSON(map[string]string{
				"target_url": "https://example.com",
			}).
			Expect().
			Status(http.StatusServiceUnavailable).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Times(1).
			Return(nil, errors.New("unknown error"))

		suite.e.POST(path).
			WithJSON(map[string]string{
				"target_url": "https://example.com",
			}).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ServerErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Times(1).
			Return(&models.URLMapping{
				ID:        1,
				Key:       "abc123XYZ-_",
				TargetURL: "https://example.com",
				IsActive:  true,
			}, nil)

		data := suite.e.POST(path).
			WithJSON(map[string]string{
				"target_url": "https://example.com",
			}).
			Expect().
			Status(http.StatusCreated).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusSuccess).
			Value("data").Object()

		data.HasValue("key", "abc123XYZ-_").
			HasValue("target_url", "https://example.com").
			HasValue("is_active", true).
			HasValue("clicks", 0).
			HasValue("url", suite.server.URL+"/abc123XYZ-_").
			HasValue("admin_url", suite.server.URL+"/api/v1/urls/abc123XYZ-_")
	})
}

func (suite *HandlersTestSuite) TestRedirect() {
	suite.Run("mapping not found", func() {
		suite.urlSvcMock.
			On("ResolveURL", mock.Anything, "doesnotexist").
			Times(1).
			Return(nil, database.ErrMappingNotFound)

		suite.e.GET("/doesnotexist").
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("ResolveURL", mock.Anything, "abc123XYZ-_").
			Times(1).
			Return(nil, errors.New("unknown error"))

		suite.e.GET("/abc123XYZ-_").
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ServerErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("ResolveURL", mock.Anything, "abc123XYZ-_").
			Times(1).
			Return(&models.URLMapping{
				Key:       "abc123XYZ-_",
				TargetURL: "https://example.com",
				IsActive:  true,
				Clicks:    1,
			}, nil)

		suite.e.GET("/abc123XYZ-_").
			Expect().
			Status(http.StatusTemporaryRedirect).
			Header("Location").IsEqual("https://example.com")
	})
}

func (suite *HandlersTestSuite) TestInspectURL() {
	const path = "/api/v1/urls/{key}"

	suite.Run("mapping not found", func() {
		suite.urlSvcMock.
			On("InspectURL", mock.Anything, "doesnotexist").
			Times(1).
			Return(nil, database.ErrMappingNotFound)

		suite.e.GET(path, "doesnotexist").
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("inactive mapping still inspectable", func() {
		suite.urlSvcMock.
			On("InspectURL", mock.Anything, "abc123XYZ-_").
			Times(1).
			Return(&models.URLMapping{
				Key:       "abc123XYZ-_",
				TargetURL: "https://example.com",
				IsActive:  false,
				Clicks:    7,
			}, nil)

		suite.e.GET(path, "abc123XYZ-_").
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusSuccess).
			Value("data").Object().
			HasValue("key", "abc123XYZ-_").
			HasValue("is_active", false).
			HasValue("clicks", 7)
	})
}

func (suite *HandlersTestSuite) TestDeactivateURL() {
	const path = "/api/v1/urls/{key}"

	suite.Run("mapping not found", func() {
		suite.urlSvcMock.
			On("DeactivateURL", mock.Anything, "doesnotexist").
			Times(1).
			Return(nil, database.ErrMappingNotFound)

		suite.e.DELETE(path, "doesnotexist").
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("DeactivateURL", mock.Anything, "abc123XYZ-_").
			Times(1).
			Return(&models.URLMapping{
				Key:       "abc123XYZ-_",
				TargetURL: "https://example.com",
				IsActive:  false,
			}, nil)

		suite.e.DELETE(path, "abc123XYZ-_").
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusSuccess).
			Value("data").Object().
			HasValue("is_active", false)
	})
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
