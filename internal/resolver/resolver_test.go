package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Wallfou/NBA-PICKS/internal/models"
)

// MockDirectory is a mock implementation of Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ActivePlayers(ctx context.Context) ([]models.PlayerInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlayerInfo), args.Error(1)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestResolveStaticHitSkipsDirectory(t *testing.T) {
	directory := new(MockDirectory)
	r := New(directory, testLogger())

	id, err := r.Resolve(context.Background(), "Stephen Curry")

	require.NoError(t, err)
	assert.Equal(t, 201939, id)
	directory.AssertNotCalled(t, "ActivePlayers", mock.Anything)
}

func TestResolveExactDirectoryMatch(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("ActivePlayers", mock.Anything).Return([]models.PlayerInfo{
		{ID: 1629027, Name: "Trae Young", Team: "ATL"},
		{ID: 1631096, Name: "Bennedict Mathurin", Team: "IND"},
	}, nil)
	r := New(directory, testLogger())

	id, err := r.Resolve(context.Background(), "bennedict mathurin")

	require.NoError(t, err)
	assert.Equal(t, 1631096, id)
}

func TestResolveFuzzyFallsBackToLastName(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("ActivePlayers", mock.Anything).Return([]models.PlayerInfo{
		{ID: 1629029, Name: "Luka Dončić", Team: "LAL"},
	}, nil)
	r := New(directory, testLogger())

	// Exact match fails on the accented directory spelling; a last name
	// that substring-matches the directory form still resolves.
	id, err := r.Resolve(context.Background(), "Luka Donchich")
	require.Error(t, err)
	assert.Zero(t, id)

	id, err = r.Resolve(context.Background(), "Somebody Don")
	require.NoError(t, err)
	assert.Equal(t, 1629029, id)
}

func TestResolveMemoizesDirectoryHits(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("ActivePlayers", mock.Anything).Return([]models.PlayerInfo{
		{ID: 1630578, Name: "Alperen Sengun", Team: "HOU"},
	}, nil).Once()
	r := New(directory, testLogger())

	id, err := r.Resolve(context.Background(), "Alperen Sengun")
	require.NoError(t, err)
	assert.Equal(t, 1630578, id)

	// Second resolution must come from the memo; the single expected
	// directory call is already consumed.
	id, err = r.Resolve(context.Background(), "ALPEREN SENGUN")
	require.NoError(t, err)
	assert.Equal(t, 1630578, id)
	directory.AssertExpectations(t)
}

func TestResolveNotFound(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("ActivePlayers", mock.Anything).Return([]models.PlayerInfo{
		{ID: 2544, Name: "LeBron James", Team: "LAL"},
	}, nil)
	r := New(directory, testLogger())

	_, err := r.Resolve(context.Background(), "Imaginary Player")

	assert.ErrorIs(t, err, models.ErrPlayerNotFound)
}

func TestResolveDirectoryErrorDoesNotAbort(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("ActivePlayers", mock.Anything).Return(nil, errors.New("upstream down"))
	r := New(directory, testLogger())

	// Static table still works when the directory is unreachable.
	id, err := r.Resolve(context.Background(), "Nikola Jokic")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = r.Resolve(context.Background(), "Unknown Name")
	assert.ErrorIs(t, err, models.ErrPlayerNotFound)
}
