package bdd

import (
	"context"
	"fmt"
	"os"
	"testing"

	visapp "subtitle_platform_service/internal/visibility/app"
	visdomain "subtitle_platform_service/internal/visibility/domain"
	"subtitle_platform_service/pkg/logger"

	"github.com/cucumber/godog"
)

func init() {
	logger.SetNewNop()
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Paths:  []string{"./featureFiles"}, // 指向 feature 檔相對路徑
			Format: "pretty",
			Output: os.Stdout,
		},
	}

	if suite.Run() != 0 {
		t.Fail()
	}
}

// memPolicyRepo in-memory stand-in for the gorm policy repo
type memPolicyRepo struct {
	policies map[uint]*visdomain.VisibilityPolicy
}

func (m *memPolicyRepo) AutoMigrate() error { return nil }

func (m *memPolicyRepo) GetByVideoID(videoID uint) (*visdomain.VisibilityPolicy, error) {
	p, ok := m.policies[videoID]
	if !ok {
		return nil, visdomain.ErrPolicyNotFound
	}
	return p, nil
}

func (m *memPolicyRepo) CreateForVideo(policy *visdomain.VisibilityPolicy) error {
	if _, ok := m.policies[policy.VideoID]; ok {
		return visdomain.ErrPolicyExists
	}
	m.policies[policy.VideoID] = policy
	return nil
}

func (m *memPolicyRepo) DeleteForVideo(videoID uint) error {
	if _, ok := m.policies[videoID]; !ok {
		return visdomain.ErrPolicyNotFound
	}
	delete(m.policies, videoID)
	return nil
}

// memMembership in-memory team membership
type memMembership struct {
	members map[string]bool // "teamID|userID"
}

func (m *memMembership) IsMember(ctx context.Context, teamID uint, userID string) (bool, error) {
	return m.members[fmt.Sprintf("%d|%s", teamID, userID)], nil
}

type noopReindexer struct{}

func (noopReindexer) ReindexVideo(ctx context.Context, videoID uint) {}

// world 每個 scenario 重建一次
type world struct {
	repo        *memPolicyRepo
	membership  *memMembership
	uc          visapp.VisibilityUseCase
	videoIDs    map[string]uint
	teamIDs     map[string]uint
	nextID      uint
	lastVideo   string
	canSee      bool
	widgetShown bool
}

var w *world

func resetWorld() {
	repo := &memPolicyRepo{policies: map[uint]*visdomain.VisibilityPolicy{}}
	membership := &memMembership{members: map[string]bool{}}
	w = &world{
		repo:       repo,
		membership: membership,
		uc:         visapp.NewVisibilityUseCase(repo, membership, noopReindexer{}),
		videoIDs:   map[string]uint{},
		teamIDs:    map[string]uint{},
	}
}

func (x *world) videoID(name string) uint {
	id, ok := x.videoIDs[name]
	if !ok {
		x.nextID++
		id = x.nextID
		x.videoIDs[name] = id
	}
	x.lastVideo = name
	return id
}

func (x *world) teamID(name string) uint {
	id, ok := x.teamIDs[name]
	if !ok {
		x.nextID++
		id = x.nextID
		x.teamIDs[name] = id
	}
	return id
}

func secretFor(video string) string {
	return "secret-" + video
}

func aVideoWithNoPolicy(video string) error {
	w.videoID(video)
	return nil
}

func (x *world) seedPolicy(video string, policy *visdomain.VisibilityPolicy) error {
	policy.VideoID = x.videoID(video)
	policy.SecretKey = secretFor(video)
	if policy.WidgetVisibility == "" {
		policy.WidgetVisibility = string(visdomain.WidgetPublic)
	}
	return x.repo.CreateForVideo(policy)
}

func aVideoOwnedByUser(video, user string) error {
	return w.seedPolicy(video, &visdomain.VisibilityPolicy{
		OwnerKind:      string(visdomain.OwnerUser),
		OwnerUserID:    user,
		SiteVisibility: string(visdomain.SitePrivateOwner),
	})
}

func aVideoOwnedByUserWithKey(video, user string) error {
	return w.seedPolicy(video, &visdomain.VisibilityPolicy{
		OwnerKind:      string(visdomain.OwnerUser),
		OwnerUserID:    user,
		SiteVisibility: string(visdomain.SitePrivateWithKey),
	})
}

func aVideoOwnedByTeam(video, team string) error {
	return w.seedPolicy(video, &visdomain.VisibilityPolicy{
		OwnerKind:      string(visdomain.OwnerTeam),
		OwnerTeamID:    w.teamID(team),
		SiteVisibility: string(visdomain.SitePrivateOwner),
	})
}

func userIsMemberOfTeam(user, team string) error {
	w.membership.members[fmt.Sprintf("%d|%s", w.teamID(team), user)] = true
	return nil
}

func videoHidesWidget(video string) error {
	policy, err := w.repo.GetByVideoID(w.videoID(video))
	if err != nil {
		return err
	}
	policy.WidgetVisibility = string(visdomain.WidgetHidden)
	return nil
}

func videoWhitelistsDomain(video, domainName string) error {
	policy, err := w.repo.GetByVideoID(w.videoID(video))
	if err != nil {
		return err
	}
	policy.WidgetVisibility = string(visdomain.WidgetWhitelisted)
	policy.EmbedAllowedDomains = visdomain.NormalizeDomains([]string{domainName})
	return nil
}

func (x *world) open(video string, actor visdomain.Actor, secret string) error {
	canSee, err := x.uc.UserCanSee(context.Background(), actor, x.videoID(video), secret)
	if err != nil {
		return err
	}
	x.canSee = canSee
	return nil
}

func userOpensVideo(user, video string) error {
	return w.open(video, visdomain.Actor{UserID: user}, "")
}

func anonymousOpensVideo(video string) error {
	return w.open(video, visdomain.Actor{}, "")
}

func anonymousOpensVideoWithCorrectSecret(video string) error {
	return w.open(video, visdomain.Actor{}, secretFor(video))
}

func anonymousOpensVideoWithSecret(video, secret string) error {
	return w.open(video, visdomain.Actor{}, secret)
}

func superuserOpensVideo(video string) error {
	return w.open(video, visdomain.Actor{UserID: "root", IsSuperuser: true}, "")
}

func videoShouldBeVisible() error {
	if !w.canSee {
		return fmt.Errorf("expected video to be visible")
	}
	return nil
}

func videoShouldBeHidden() error {
	if w.canSee {
		return fmt.Errorf("expected video to be hidden")
	}
	return nil
}

func (x *world) embed(video, from string) error {
	shown, err := x.uc.CanShowWidget(context.Background(), x.videoID(video), from)
	if err != nil {
		return err
	}
	x.widgetShown = shown
	return nil
}

func widgetEmbeddedFrom(from string) error {
	return w.embed(w.lastVideo, from)
}

func widgetOfVideoEmbeddedFrom(video, from string) error {
	return w.embed(video, from)
}

func widgetShouldBeShown() error {
	if !w.widgetShown {
		return fmt.Errorf("expected widget to be shown")
	}
	return nil
}

func widgetShouldNotBeShown() error {
	if w.widgetShown {
		return fmt.Errorf("expected widget to be hidden")
	}
	return nil
}

// InitializeScenario 註冊 Gherkin 與 Step Definition 的對應
func InitializeScenario(s *godog.ScenarioContext) {
	s.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		resetWorld()
		return ctx, nil
	})

	s.Step(`^a video "([^"]*)" with no visibility policy$`, aVideoWithNoPolicy)
	s.Step(`^a video "([^"]*)" owned privately by user "([^"]*)"$`, aVideoOwnedByUser)
	s.Step(`^a video "([^"]*)" owned privately by user "([^"]*)" with a secret key$`, aVideoOwnedByUserWithKey)
	s.Step(`^a video "([^"]*)" owned privately by team "([^"]*)"$`, aVideoOwnedByTeam)
	s.Step(`^user "([^"]*)" is a member of team "([^"]*)"$`, userIsMemberOfTeam)
	s.Step(`^video "([^"]*)" hides its widget$`, videoHidesWidget)
	s.Step(`^video "([^"]*)" whitelists domain "([^"]*)"$`, videoWhitelistsDomain)

	s.Step(`^user "([^"]*)" opens video "([^"]*)"$`, userOpensVideo)
	s.Step(`^an anonymous visitor opens video "([^"]*)"$`, anonymousOpensVideo)
	s.Step(`^an anonymous visitor opens video "([^"]*)" with the correct secret$`, anonymousOpensVideoWithCorrectSecret)
	s.Step(`^an anonymous visitor opens video "([^"]*)" with secret "([^"]*)"$`, anonymousOpensVideoWithSecret)
	s.Step(`^a superuser opens video "([^"]*)"$`, superuserOpensVideo)

	s.Step(`^the video should be visible$`, videoShouldBeVisible)
	s.Step(`^the video should be hidden$`, videoShouldBeHidden)

	s.Step(`^the widget is embedded from "([^"]*)"$`, widgetEmbeddedFrom)
	s.Step(`^the widget of "([^"]*)" is embedded from "([^"]*)"$`, widgetOfVideoEmbeddedFrom)
	s.Step(`^the widget should be shown$`, widgetShouldBeShown)
	s.Step(`^the widget should not be shown$`, widgetShouldNotBeShown)
}
