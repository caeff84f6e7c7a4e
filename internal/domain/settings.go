package domain

import "context"

// Setting keys.
const (
	SettingDefaultReferralCode = "default_referral_code"
)

// SettingsRepository stores small key/value site settings.
type SettingsRepository interface {
	// Get returns ErrNotFound when the key was never set.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
