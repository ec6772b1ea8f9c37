package domain

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"
)

// SiteVisibility governs who can see the video on the site
type SiteVisibility string

const (
	// SitePublic everyone can see the video
	SitePublic SiteVisibility = "public"
	// SitePrivateOwner only the owning user / team members can see it
	SitePrivateOwner SiteVisibility = "private-owner"
	// SitePrivateWithKey like private-owner, plus secret key bypass
	SitePrivateWithKey SiteVisibility = "private-with-key"
)

// WidgetVisibility governs the embeddable widget, independent of site access
type WidgetVisibility string

const (
	// WidgetPublic the widget embeds anywhere
	WidgetPublic WidgetVisibility = "public"
	// WidgetHidden the widget never embeds
	WidgetHidden WidgetVisibility = "hidden"
	// WidgetWhitelisted the widget embeds only on listed domains
	WidgetWhitelisted WidgetVisibility = "whitelisted"
)

// OwnerKind tags the policy owner variant
type OwnerKind string

const (
	// OwnerUser the policy is owned by a single user
	OwnerUser OwnerKind = "user"
	// OwnerTeam the policy is owned by a team
	OwnerTeam OwnerKind = "team"
)

// 引擎對外的錯誤
var (
	// ErrPolicyExists a video holds at most one policy, callers delete first
	ErrPolicyExists = errors.New("video already has a visibility policy")
	// ErrPolicyNotFound no policy row for the video
	ErrPolicyNotFound = errors.New("video has no visibility policy")
	// ErrPermissionDenied the actor may not own or manage this policy
	ErrPermissionDenied = errors.New("actor may not manage this policy")
	// ErrInvalidOwner owner must be exactly one of user or team
	ErrInvalidOwner = errors.New("policy owner must be a user or a team")
	// ErrInvalidVisibility unknown site or widget visibility value
	ErrInvalidVisibility = errors.New("invalid visibility value")
)

// ValidSiteVisibility check a site visibility string
func ValidSiteVisibility(v SiteVisibility) bool {
	switch v {
	case SitePublic, SitePrivateOwner, SitePrivateWithKey:
		return true
	}
	return false
}

// ValidWidgetVisibility check a widget visibility string
func ValidWidgetVisibility(v WidgetVisibility) bool {
	switch v {
	case WidgetPublic, WidgetHidden, WidgetWhitelisted:
		return true
	}
	return false
}

// Owner is the tagged user-or-team variant owning a policy. Exactly one side
// is meaningful, selected by Kind.
type Owner struct {
	Kind   OwnerKind
	UserID string
	TeamID uint
}

// Valid check the variant carries the matching id
func (o Owner) Valid() bool {
	switch o.Kind {
	case OwnerUser:
		return o.UserID != ""
	case OwnerTeam:
		return o.TeamID != 0
	default:
		return false
	}
}

// Actor is the acting identity for every engine query. A zero Actor is an
// anonymous visitor.
type Actor struct {
	UserID      string
	IsSuperuser bool
}

// Anonymous true when no authenticated user is acting
func (a Actor) Anonymous() bool {
	return a.UserID == ""
}

// VisibilityPolicy 每部影片最多一筆
type VisibilityPolicy struct {
	ID      uint `gorm:"primaryKey"`
	VideoID uint `gorm:"uniqueIndex"`

	OwnerKind   string
	OwnerUserID string
	OwnerTeamID uint

	SiteVisibility   string
	WidgetVisibility string

	// SecretKey generated once at creation, stable for the policy lifetime
	SecretKey string `gorm:"uniqueIndex"`

	// EmbedAllowedDomains comma separated, normalized via NormalizeDomains
	EmbedAllowedDomains string

	CreatedAt time.Time
}

// Owner rebuild the tagged owner variant
func (p *VisibilityPolicy) Owner() Owner {
	return Owner{
		Kind:   OwnerKind(p.OwnerKind),
		UserID: p.OwnerUserID,
		TeamID: p.OwnerTeamID,
	}
}

// BelongsToTeam true when the owning side is a team
func (p *VisibilityPolicy) BelongsToTeam() bool {
	return OwnerKind(p.OwnerKind) == OwnerTeam
}

// MakesVideoPublic the denormalized videos.is_public value implied by the policy
func (p *VisibilityPolicy) MakesVideoPublic() bool {
	return SiteVisibility(p.SiteVisibility) == SitePublic
}

// SecretMatches constant time compare of a supplied secret
func (p *VisibilityPolicy) SecretMatches(supplied string) bool {
	if supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(p.SecretKey), []byte(supplied)) == 1
}

// IsDomainAllowed exact case-insensitive token match against the stored list
func (p *VisibilityPolicy) IsDomainAllowed(referringDomain string) bool {
	if referringDomain == "" {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(referringDomain))
	for _, allowed := range strings.Split(p.EmbedAllowedDomains, ",") {
		if allowed != "" && allowed == want {
			return true
		}
	}
	return false
}

// NormalizeDomains lowercases and trims the whitelist before persisting
func NormalizeDomains(domains []string) string {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return strings.Join(normalized, ",")
}
