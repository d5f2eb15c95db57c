package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/investingindigital/url-shortener/internal/database"
	"github.com/investingindigital/url-shortener/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockURLRepository struct {
	mock.Mock
}

func (m *MockURLRepository) Create(ctx context.Context, url *models.URL) (*models.URL, error) {
	args := m.Called(ctx, url)
	u, _ := args.Get(0).(*models.URL)
	return u, args.Error(1)
}

func (m *MockURLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	args := m.Called(ctx, shortCode)
	u, _ := args.Get(0).(*models.URL)
	return u, args.Error(1)
}

func (m *MockURLRepository) GetByHash(ctx context.Context, urlHash string) (*models.URL, error) {
	args := m.Called(ctx, urlHash)
	u, _ := args.Get(0).(*models.URL)
	return u, args.Error(1)
}

func (m *MockURLRepository) Reactivate(ctx context.Context, id int64) (*models.URL, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.URL)
	return u, args.Error(1)
}

func (m *MockURLRepository) Update(ctx context.Context, url *models.URL) (*models.URL, error) {
	args := m.Called(ctx, url)
	u, _ := args.Get(0).(*models.URL)
	return u, args.Error(1)
}

func (m *MockURLRepository) Deactivate(ctx context.Context, shortCode string) error {
	args := m.Called(ctx, shortCode)
	return args.Error(0)
}

type MockURLVerifier struct {
	mock.Mock
}

func (m *MockURLVerifier) Verify(ctx context.Context, url string) bool {
	args := m.Called(ctx, url)
	return args.Bool(0)
}

type URLServiceTestSuite struct {
	suite.Suite
	errUnknown   error
	repoMock     *MockURLRepository
	verifierMock *MockURLVerifier
	codes        []string
	svc          *URLService
}

func (suite *URLServiceTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *URLServiceTestSuite) SetupSubTest() {
	suite.repoMock = new(MockURLRepository)
	suite.verifierMock = new(MockURLVerifier)
	suite.codes = []string{"aaaaaa"}

	i := 0
	generate := func() (string, error) {
		code := suite.codes[i%len(suite.codes)]
		i++
		return code, nil
	}

	suite.svc = NewURLService(suite.repoMock, suite.verifierMock, WithCodeGenerator(generate))
}

func (suite *URLServiceTestSuite) TearDownSubTest() {
	suite.repoMock.AssertExpectations(suite.T())
	suite.verifierMock.AssertExpectations(suite.T())
}

func (suite *URLServiceTestSuite) TestShortenURL() {
	ctx := context.Background()
	hash := Fingerprint("https://example.com")

	suite.Run("existing active mapping is returned unchanged", func() {
		existing := &models.URL{ID: 1, OriginalURL: "https://example.com", URLHash: hash, ShortCode: "abcDEF", IsActive: true}

		suite.repoMock.
			On("GetByHash", ctx, hash).
			Once().
			Return(existing, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com", "")

		suite.NoError(err)
		suite.Equal(existing, url)
		suite.repoMock.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	})

	suite.Run("inactive mapping is reactivated under its original code", func() {
		existing := &models.URL{ID: 1, OriginalURL: "https://example.com", URLHash: hash, ShortCode: "abcDEF", IsActive: false}
		reactivated := &models.URL{ID: 1, OriginalURL: "https://example.com", URLHash: hash, ShortCode: "abcDEF", IsActive: true}

		suite.repoMock.
			On("GetByHash", ctx, hash).
			Once().
			Return(existing, nil)
		suite.repoMock.
			On("Reactivate", ctx, int64(1)).
			Once().
			Return(reactivated, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com", "")

		suite.NoError(err)
		suite.Equal(reactivated, url)
		suite.repoMock.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	})

	suite.Run("custom code taken by an active mapping", func() {
		holder := &models.URL{ID: 2, ShortCode: "abc123", IsActive: true}

		suite.repoMock.
			On("GetByHash", ctx, hash).
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.repoMock.
			On("GetByShortCode", ctx, "abc123").
			Once().
			Return(holder, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com", "abc123")

		suite.Error(err)
		suite.ErrorIs(err, ErrShortCodeTaken)
		suite.Nil(url)
		suite.repoMock.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	})

	suite.Run("custom code held by an inactive mapping is reclaimed", func() {
		holder := &models.URL{ID: 2, ShortCode: "abc123", IsActive: false}
		created := &models.URL{ID: 3, OriginalURL: "https://example.com", URLHash: hash, ShortCode: "abc123", IsActive: true}

		suite.repoMock.
			On("GetByHash", ctx, hash).
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.repoMock.
			On("GetByShortCode", ctx, "abc123").
			Once().
			Return(holder, nil)
		suite.repoMock.
			On("Create", ctx, &models.URL{OriginalURL: "https://example.com", URLHash: hash, ShortCode: "abc123", IsActive: true}).
			Once().
			Return(created, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com", "abc123")

		suite.NoError(err)
		suite.Equal(created, url)
	})

	suite.Run("random candidate held by an active mapping is skipped", func() {
		suite.codes = []string{"aaaaaa", "bbbbbb"}
		holder := &models.URL{ID: 2, ShortCode: "aaaaaa", IsActive: true}
		created := &models.URL{ID: 3, OriginalURL: "https://example.com", URLHash: hash, ShortCode: "bbbbbb", IsActive: true}

		suite.repoMock.
			On("GetByHash", ctx, hash).
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.repoMock.
			On("GetByShortCode", ctx, "aaaaaa").
			Once().
			Return(holder, nil)
		suite.repoMock.
			On("GetByShortCode", ctx, "bbbbbb").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.repoMock.
			On("Create", ctx, &models.URL{OriginalURL: "https://example.com", URLHash: hash, ShortCode: "bbbbbb", IsActive: true}).
			Once().
			Return(created, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com", "")

		suite.NoError(err)
		suite.Equal(created, url)
	})

	suite.Run("retry cap exceeded", func() {
		holder := &models.URL{ID: 2, ShortCode: "aaaaaa", IsActive: true}

		suite.repoMock.
			On("GetByHash", ctx, hash).
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.repoMock.
			On("GetByShortCode", ctx, "aaaaaa").
			Times(maxCodeRetries).
			Return(holder, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com", "")

		suite.Error(err)
		suite.ErrorIs(err, ErrMaxRetriesExceeded)
		suite.Nil(url)
	})

	suite.Run("lost race is not retried", func() {
		suite.repoMock.
			On("GetByHash", ctx, hash).
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.repoMock.
			On("GetByShortCode", ctx, "aaaaaa").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.repoMock.
			On("Create", ctx, mock.Anything).
			Once().
			Return(nil, database.ErrShortCodeExists)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com", "")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrShortCodeExists)
		suite.Nil(url)
		suite.repoMock.AssertNumberOfCalls(suite.T(), "Create", 1)
	})

	suite.Run("long target is truncated before hashing", func() {
		long := "https://example.com/" + strings.Repeat("a", 3000)
		truncated := long[:maxURLLength]
		wantHash := Fingerprint(truncated)

		suite.repoMock.
			On("GetByHash", ctx, wantHash).
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.repoMock.
			On("GetByShortCode", ctx, "aaaaaa").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.repoMock.
			On("Create", ctx, &models.URL{OriginalURL: truncated, URLHash: wantHash, ShortCode: "aaaaaa", IsActive: true}).
			Once().
			Return(&models.URL{ID: 1, OriginalURL: truncated, URLHash: wantHash, ShortCode: "aaaaaa", IsActive: true}, nil)

		url, err := suite.svc.ShortenURL(ctx, long, "")

		suite.NoError(err)
		suite.Equal(truncated, url.OriginalURL)
	})

	suite.Run("unknown error", func() {
		suite.repoMock.
			On("GetByHash", ctx, hash).
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com", "")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})
}

func (suite *URLServiceTestSuite) TestResolveShortCode() {
	ctx := context.Background()

	suite.Run("unknown code", func() {
		suite.repoMock.
			On("GetByShortCode", ctx, "abcDEF").
			Once().
			Return(nil, database.ErrURLNotFound)

		url, err := suite.svc.ResolveShortCode(ctx, "abcDEF")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("deactivated code surfaces as not found", func() {
		suite.repoMock.
			On("GetByShortCode", ctx, "abcDEF").
			Once().
			Return(&models.URL{ID: 1, ShortCode: "abcDEF", IsActive: false}, nil)

		url, err := suite.svc.ResolveShortCode(ctx, "abcDEF")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("active code resolves to the original url", func() {
		existing := &models.URL{ID: 1, OriginalURL: "https://example.com", ShortCode: "abcDEF", IsActive: true}

		suite.repoMock.
			On("GetByShortCode", ctx, "abcDEF").
			Once().
			Return(existing, nil)

		url, err := suite.svc.ResolveShortCode(ctx, "abcDEF")

		suite.NoError(err)
		suite.Equal(existing, url)
	})
}

func (suite *URLServiceTestSuite) TestModifyURL() {
	ctx := context.Background()

	suite.Run("url not found", func() {
		suite.repoMock.
			On("GetByShortCode", ctx, "abcDEF").
			Once().
			Return(nil, database.ErrURLNotFound)

		url, err := suite.svc.ModifyURL(ctx, "abcDEF", URLUpdate{})

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("unreachable target rejected before any mutation", func() {
		existing := &models.URL{ID: 1, OriginalURL: "https://example.com", ShortCode: "abcDEF", IsActive: true}

		suite.repoMock.
			On("GetByShortCode", ctx, "abcDEF").
			Once().
			Return(existing, nil)
		suite.verifierMock.
			On("Verify", ctx, "https://dead.example.com").
			Once().
			Return(false)

		url, err := suite.svc.ModifyURL(ctx, "abcDEF", URLUpdate{TargetURL: strPtr("https://dead.example.com")})

		suite.Error(err)
		suite.ErrorIs(err, ErrURLNotReachable)
		suite.Nil(url)
		suite.repoMock.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
	})

	suite.Run("target change recomputes the hash", func() {
		existing := &models.URL{ID: 1, OriginalURL: "https://example.com", URLHash: Fingerprint("https://example.com"), ShortCode: "abcDEF", IsActive: true}
		want := &models.URL{ID: 1, OriginalURL: "https://new-example.com", URLHash: Fingerprint("https://new-example.com"), ShortCode: "abcDEF", IsActive: true}

		suite.repoMock.
			On("GetByShortCode", ctx, "abcDEF").
			Once().
			Return(existing, nil)
		suite.verifierMock.
			On("Verify", ctx, "https://new-example.com").
			Once().
			Return(true)
		suite.repoMock.
			On("Update", ctx, want).
			Once().
			Return(want, nil)

		url, err := suite.svc.ModifyURL(ctx, "abcDEF", URLUpdate{TargetURL: strPtr("https://new-example.com")})

		suite.NoError(err)
		suite.Equal(want, url)
	})

	suite.Run("rename rejected while an active mapping holds the code", func() {
		existing := &models.URL{ID: 1, ShortCode: "abcDEF", IsActive: true}
		holder := &models.URL{ID: 2, ShortCode: "xyzZYX", IsActive: true}

		suite.repoMock.
			On("GetByShortCode", ctx, "abcDEF").
			Once().
			Return(existing, nil)
		suite.repoMock.
			On("GetByShortCode", ctx, "xyzZYX").
			Once().
			Return(holder, nil)

		url, err := suite.svc.ModifyURL(ctx, "abcDEF", URLUpdate{ShortCode: strPtr("xyzZYX")})

		suite.Error(err)
		suite.ErrorIs(err, ErrShortCodeTaken)
		suite.Nil(url)
		suite.repoMock.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
	})

	suite.Run("rename reclaims an inactive holder", func() {
		existing := &models.URL{ID: 1, ShortCode: "abcDEF", IsActive: true}
		holder := &models.URL{ID: 2, ShortCode: "xyzZYX", IsActive: false}
		want := &models.URL{ID: 1, ShortCode: "xyzZYX", IsActive: true}

		suite.repoMock.
			On("GetByShortCode", ctx, "abcDEF").
			Once().
			Return(existing, nil)
		suite.repoMock.
			On("GetByShortCode", ctx, "xyzZYX").
			Once().
			Return(holder, nil)
		suite.repoMock.
			On("Update", ctx, want).
			Once().
			Return(want, nil)

		url, err := suite.svc.ModifyURL(ctx, "abcDEF", URLUpdate{ShortCode: strPtr("xyzZYX")})

		suite.NoError(err)
		suite.Equal(want, url)
	})

	suite.Run("active flag flipped", func() {
		existing := &models.URL{ID: 1, ShortCode: "abcDEF", IsActive: true}
		want := &models.URL{ID: 1, ShortCode: "abcDEF", IsActive: false}

		suite.repoMock.
			On("GetByShortCode", ctx, "abcDEF").
			Once().
			Return(existing, nil)
		suite.repoMock.
			On("Update", ctx, want).
			Once().
			Return(want, nil)

		url, err := suite.svc.ModifyURL(ctx, "abcDEF", URLUpdate{IsActive: boolPtr(false)})

		suite.NoError(err)
		suite.Equal(want, url)
	})
}

func (suite *URLServiceTestSuite) TestDeactivateURL() {
	ctx := context.Background()

	suite.Run("url not found", func() {
		suite.repoMock.
			On("Deactivate", ctx, "abcDEF").
			Once().
			Return(database.ErrURLNotFound)

		err := suite.svc.DeactivateURL(ctx, "abcDEF")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("Deactivate", ctx, "abcDEF").
			Once().
			Return(nil)

		err := suite.svc.DeactivateURL(ctx, "abcDEF")

		suite.NoError(err)
	})
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func TestURLService(t *testing.T) {
	suite.Run(t, new(URLServiceTestSuite))
}
