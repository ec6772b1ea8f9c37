package app

import (
	"context"
	"testing"

	notifdomain "subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/internal/video/domain"
	"subtitle_platform_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetNewNop()
}

type mockVideoRepo struct {
	mock.Mock
}

func (m *mockVideoRepo) AutoMigrate() error {
	return m.Called().Error(0)
}

func (m *mockVideoRepo) Create(video *domain.Video) error {
	args := m.Called(video)
	video.ID = 10
	return args.Error(0)
}

func (m *mockVideoRepo) GetByID(id uint) (*domain.Video, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

func (m *mockVideoRepo) GetByVideoID(videoID string) (*domain.Video, error) {
	args := m.Called(videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

func (m *mockVideoRepo) Update(video *domain.Video) error {
	return m.Called(video).Error(0)
}

func (m *mockVideoRepo) SetTeam(id uint, teamID *uint) error {
	return m.Called(id, teamID).Error(0)
}

func (m *mockVideoRepo) SearchVideos(keyword string) ([]domain.Video, error) {
	args := m.Called(keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Video), args.Error(1)
}

type videoEvent struct {
	kind      string
	teamID    uint
	video     notifdomain.VideoInfo
	otherTeam *uint
}

type eventRecorder struct {
	notifdomain.NopDispatcher
	events []videoEvent
}

func (r *eventRecorder) VideoAdded(ctx context.Context, teamID uint, video notifdomain.VideoInfo, fromTeamID *uint) {
	r.events = append(r.events, videoEvent{kind: "added", teamID: teamID, video: video, otherTeam: fromTeamID})
}

func (r *eventRecorder) VideoRemoved(ctx context.Context, teamID uint, video notifdomain.VideoInfo, toTeamID *uint) {
	r.events = append(r.events, videoEvent{kind: "removed", teamID: teamID, video: video, otherTeam: toTeamID})
}

type reindexRecorder struct{ calls []uint }

func (r *reindexRecorder) ReindexVideo(ctx context.Context, videoID uint) {
	r.calls = append(r.calls, videoID)
}

func TestCreateTeamVideoFiresVideoAdded(t *testing.T) {
	repo := new(mockVideoRepo)
	repo.On("Create", mock.Anything).Return(nil)

	dispatcher := &eventRecorder{}
	reindexer := &reindexRecorder{}
	uc := NewVideoUseCase(repo, dispatcher, reindexer)

	teamID := uint(5)
	video, err := uc.Create(context.Background(), domain.CreateVideoReq{Title: "Talk", TeamID: &teamID})
	require.NoError(t, err)
	assert.NotEmpty(t, video.VideoID)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, "added", dispatcher.events[0].kind)
	assert.Equal(t, uint(5), dispatcher.events[0].teamID)
	assert.Nil(t, dispatcher.events[0].otherTeam)
	assert.Equal(t, []uint{10}, reindexer.calls)
}

func TestCreateOrphanVideoFiresNoEvent(t *testing.T) {
	repo := new(mockVideoRepo)
	repo.On("Create", mock.Anything).Return(nil)

	dispatcher := &eventRecorder{}
	uc := NewVideoUseCase(repo, dispatcher, &reindexRecorder{})

	_, err := uc.Create(context.Background(), domain.CreateVideoReq{Title: "Solo"})
	require.NoError(t, err)
	assert.Empty(t, dispatcher.events)
}

// 搬移時舊 team 收到 removed(帶目的地),新 team 收到 added(帶來源)
func TestMoveToTeamEventPair(t *testing.T) {
	oldTeam := uint(1)
	repo := new(mockVideoRepo)
	repo.On("GetByVideoID", "vid-1").Return(&domain.Video{
		ID: 10, VideoID: "vid-1", Title: "Talk", TeamID: &oldTeam,
	}, nil)
	repo.On("SetTeam", uint(10), mock.Anything).Return(nil)

	dispatcher := &eventRecorder{}
	reindexer := &reindexRecorder{}
	uc := NewVideoUseCase(repo, dispatcher, reindexer)

	err := uc.MoveToTeam(context.Background(), "vid-1", 2)
	require.NoError(t, err)

	require.Len(t, dispatcher.events, 2)

	removed := dispatcher.events[0]
	assert.Equal(t, "removed", removed.kind)
	assert.Equal(t, uint(1), removed.teamID)
	require.NotNil(t, removed.otherTeam)
	assert.Equal(t, uint(2), *removed.otherTeam)

	added := dispatcher.events[1]
	assert.Equal(t, "added", added.kind)
	assert.Equal(t, uint(2), added.teamID)
	require.NotNil(t, added.otherTeam)
	assert.Equal(t, uint(1), *added.otherTeam)

	assert.Equal(t, []uint{10}, reindexer.calls)
}

func TestMoveToSameTeamIsNoop(t *testing.T) {
	team := uint(2)
	repo := new(mockVideoRepo)
	repo.On("GetByVideoID", "vid-1").Return(&domain.Video{ID: 10, VideoID: "vid-1", TeamID: &team}, nil)

	dispatcher := &eventRecorder{}
	uc := NewVideoUseCase(repo, dispatcher, &reindexRecorder{})

	err := uc.MoveToTeam(context.Background(), "vid-1", 2)
	require.NoError(t, err)
	assert.Empty(t, dispatcher.events)
	repo.AssertNotCalled(t, "SetTeam", mock.Anything, mock.Anything)
}

func TestMoveOrphanVideoOnlyAddedFires(t *testing.T) {
	repo := new(mockVideoRepo)
	repo.On("GetByVideoID", "vid-1").Return(&domain.Video{ID: 10, VideoID: "vid-1"}, nil)
	repo.On("SetTeam", uint(10), mock.Anything).Return(nil)

	dispatcher := &eventRecorder{}
	uc := NewVideoUseCase(repo, dispatcher, &reindexRecorder{})

	err := uc.MoveToTeam(context.Background(), "vid-1", 2)
	require.NoError(t, err)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, "added", dispatcher.events[0].kind)
	assert.Nil(t, dispatcher.events[0].otherTeam)
}

func TestRemoveFromTeamFiresVideoRemoved(t *testing.T) {
	team := uint(4)
	repo := new(mockVideoRepo)
	repo.On("GetByVideoID", "vid-1").Return(&domain.Video{ID: 10, VideoID: "vid-1", TeamID: &team}, nil)
	repo.On("SetTeam", uint(10), (*uint)(nil)).Return(nil)

	dispatcher := &eventRecorder{}
	uc := NewVideoUseCase(repo, dispatcher, &reindexRecorder{})

	err := uc.RemoveFromTeam(context.Background(), "vid-1")
	require.NoError(t, err)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, "removed", dispatcher.events[0].kind)
	assert.Equal(t, uint(4), dispatcher.events[0].teamID)
	assert.Nil(t, dispatcher.events[0].otherTeam)
}

func TestSearchMapsResults(t *testing.T) {
	repo := new(mockVideoRepo)
	repo.On("SearchVideos", "talk").Return([]domain.Video{
		{VideoID: "vid-1", Title: "Talk one", Language: "en"},
		{VideoID: "vid-2", Title: "Talk two", Language: "fr"},
	}, nil)

	uc := NewVideoUseCase(repo, &eventRecorder{}, &reindexRecorder{})

	results, err := uc.Search(context.Background(), "talk")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "vid-1", results[0].VideoID)
	assert.Equal(t, "fr", results[1].Language)
}
