// Package settings is the key/value configuration editable by administrators at runtime.
package settings

const (
	KeySiteName        = "site_name"
	KeySiteDescription = "site_description"
	KeySiteEmail       = "site_email"
	KeySiteLogo        = "site_logo"
	KeyTimezone        = "timezone"
	KeyDateFormat      = "date_format"
	KeyTimeFormat      = "time_format"
	KeyWeekStartsOn    = "week_starts_on"
)

// Defaults apply whenever a key has no stored row.
var Defaults = map[string]string{
	KeySiteName:     "CTO Tracking System",
	KeyTimezone:     "Asia/Vientiane",
	KeyDateFormat:   "Y-m-d",
	KeyTimeFormat:   "H:i",
	KeyWeekStartsOn: "monday",
}

// PublicKeys are served without authentication.
var PublicKeys = []string{KeySiteName, KeySiteLogo, KeySiteDescription}

type UpdateSettingsDTO struct {
	SiteName        string `json:"site_name" validate:"required,max=255"`
	SiteDescription string `json:"site_description" validate:"max=500"`
	SiteEmail       string `json:"site_email" validate:"omitempty,email,max=255"`
	Timezone        string `json:"timezone" validate:"required"`
	DateFormat      string `json:"date_format" validate:"required,max=20"`
	TimeFormat      string `json:"time_format" validate:"required,max=20"`
	WeekStartsOn    string `json:"week_starts_on" validate:"required,oneof=sunday monday"`
}

func (d UpdateSettingsDTO) values() map[string]string {
	return map[string]string{
		KeySiteName:        d.SiteName,
		KeySiteDescription: d.SiteDescription,
		KeySiteEmail:       d.SiteEmail,
		KeyTimezone:        d.Timezone,
		KeyDateFormat:      d.DateFormat,
		KeyTimeFormat:      d.TimeFormat,
		KeyWeekStartsOn:    d.WeekStartsOn,
	}
}
