package model

import (
	"time"
)

// User is the operator account as reported by the identity provider
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Theme is the UI color scheme preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Language is the UI language preference
type Language string

const (
	LangEnglish    Language = "en"
	LangSpanish    Language = "es"
	LangFrench     Language = "fr"
	LangIndonesian Language = "id"
)

// SubscriptionTier is the service level of the operator account
type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierBasic      SubscriptionTier = "basic"
	TierPremium    SubscriptionTier = "premium"
	TierEnterprise SubscriptionTier = "enterprise"
)

// Subscription describes the operator's service plan
type Subscription struct {
	Tier      SubscriptionTier `json:"tier"`
	ExpiresAt time.Time        `json:"expires_at"`
	AutoRenew bool             `json:"auto_renew"`
	Features  []string         `json:"features"`
}

// Profile is the persisted singleton of operator preferences
type Profile struct {
	User         *User         `json:"user,omitempty"`
	Theme        Theme         `json:"theme"`
	Language     Language      `json:"language"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

// DefaultProfile returns the profile used before any preference was saved
func DefaultProfile() Profile {
	return Profile{
		Theme:    ThemeLight,
		Language: LangEnglish,
	}
}
